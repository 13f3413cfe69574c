package models

// ReplyKind tells which variant of a Reply is populated
type ReplyKind int

const (
	ReplyNone ReplyKind = iota
	ReplyText
	ReplyEmbed
)

// Embed is the small rich message format replies may use
type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Footer      string `json:"footer,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Color       int    `json:"color,omitempty"`
}

// Reply is either plain text or an embed
type Reply struct {
	Text  string `json:"text,omitempty"`
	Embed *Embed `json:"embed,omitempty"`
}

func TextReply(text string) Reply {
	return Reply{Text: text}
}

func EmbedReply(embed Embed) Reply {
	return Reply{Embed: &embed}
}

func (r Reply) Kind() ReplyKind {
	switch {
	case r.Embed != nil:
		return ReplyEmbed
	case r.Text != "":
		return ReplyText
	}
	return ReplyNone
}

func (r Reply) Copy() Reply {
	copied := Reply{Text: r.Text}
	if r.Embed != nil {
		embed := *r.Embed
		copied.Embed = &embed
	}
	return copied
}
