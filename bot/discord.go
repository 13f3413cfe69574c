package bot

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/Seklfreak/Guildkeeper/modules/plugins/mod"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsMessageContent

// DiscordGateway is a Gateway backed by a discordgo session
type DiscordGateway struct {
	session *discordgo.Session
	tag     models.IdentityTag
	handler EventHandler
}

// DialDiscord is the Dialer used in production
func DialDiscord(identity helpers.IdentityConfig) (Gateway, error) {
	session, err := discordgo.New("Bot " + identity.Token)
	if err != nil {
		return nil, errors.Wrapf(err, "creating session for identity %s", identity.Tag)
	}
	session.Identify.Intents = intents
	session.StateEnabled = true
	session.State.TrackMembers = true
	session.State.MaxMessageCount = 0

	return &DiscordGateway{session: session, tag: identity.Tag}, nil
}

func (d *DiscordGateway) Open(handler EventHandler) error {
	d.handler = handler
	d.session.AddHandler(d.onReady)
	d.session.AddHandler(d.onMessageCreate)
	d.session.AddHandler(d.onInteractionCreate)
	d.session.AddHandler(d.onGuildMemberAdd)
	d.session.AddHandler(d.onGuildMemberRemove)

	return errors.Wrap(d.session.Open(), "opening gateway connection")
}

func (d *DiscordGateway) Close() error {
	return d.session.Close()
}

func (d *DiscordGateway) UserID() string {
	if d.session.State == nil || d.session.State.User == nil {
		return ""
	}
	return d.session.State.User.ID
}

func (d *DiscordGateway) RegisterCommands(commands []*discordgo.ApplicationCommand) error {
	_, err := d.session.ApplicationCommandBulkOverwrite(d.UserID(), "", commands)
	return errors.Wrap(err, "registering application commands")
}

func (d *DiscordGateway) SendReply(ctx context.Context, channelID string, reply models.Reply) error {
	message := &discordgo.MessageSend{Content: reply.Text}
	if reply.Embed != nil {
		message.Embeds = []*discordgo.MessageEmbed{helpers.DiscordEmbed(reply.Embed)}
	}
	_, err := d.session.ChannelMessageSendComplex(channelID, message, discordgo.WithContext(ctx))
	return errors.Wrapf(err, "sending message to #%s", channelID)
}

func (d *DiscordGateway) HasPermission(guildID, userID string, flag int64) bool {
	guild, err := d.guild(guildID)
	if err != nil {
		d.log(guildID).Warn(err.Error())
		return false
	}
	member, err := d.member(context.Background(), guildID, userID)
	if err != nil {
		d.log(guildID).Debug(err.Error())
		return false
	}
	return models.HasPermission(helpers.MemberPermissions(guild, member), flag)
}

func (d *DiscordGateway) CanModerate(guildID, actingID, targetID string) bool {
	guild, err := d.guild(guildID)
	if err != nil {
		d.log(guildID).Warn(err.Error())
		return false
	}
	acting, err := d.member(context.Background(), guildID, actingID)
	if err != nil {
		return false
	}
	target, err := d.member(context.Background(), guildID, targetID)
	if err != nil {
		return false
	}
	return helpers.CanModerate(guild, acting, target)
}

func (d *DiscordGateway) Member(ctx context.Context, guildID, userID string) (*models.Member, error) {
	member, err := d.member(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	return &models.Member{
		ID:            member.User.ID,
		Username:      member.User.Username,
		Bot:           member.User.Bot,
		TimedOutUntil: member.CommunicationDisabledUntil,
	}, nil
}

func (d *DiscordGateway) IsBanned(ctx context.Context, guildID, userID string) (bool, error) {
	_, err := d.session.GuildBan(guildID, userID, discordgo.WithContext(ctx))
	if isRESTError(err, discordgo.ErrCodeUnknownBan, http.StatusNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "looking up ban")
	}
	return true, nil
}

func (d *DiscordGateway) Ban(ctx context.Context, guildID, userID, reason string) error {
	return d.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
}

func (d *DiscordGateway) Unban(ctx context.Context, guildID, userID, reason string) error {
	return d.session.GuildBanDelete(guildID, userID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (d *DiscordGateway) Kick(ctx context.Context, guildID, userID, reason string) error {
	return d.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (d *DiscordGateway) Timeout(ctx context.Context, guildID, userID string, until *time.Time, reason string) error {
	return d.session.GuildMemberTimeout(guildID, userID, until,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

// guild prefers the state cache and falls back to the API
func (d *DiscordGateway) guild(guildID string) (*discordgo.Guild, error) {
	guild, err := d.session.State.Guild(guildID)
	if err == nil {
		return guild, nil
	}
	guild, err = d.session.Guild(guildID)
	return guild, errors.Wrapf(err, "looking up guild #%s", guildID)
}

// member prefers the state cache and falls back to the API. Users outside the
// guild are mod.ErrMemberNotFound.
func (d *DiscordGateway) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	member, err := d.session.State.Member(guildID, userID)
	if err == nil {
		return member, nil
	}

	member, err = d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if isRESTError(err, discordgo.ErrCodeUnknownMember, http.StatusNotFound) ||
		isRESTError(err, discordgo.ErrCodeUnknownUser, http.StatusNotFound) {
		return nil, mod.ErrMemberNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "looking up member #%s", userID)
	}
	member.GuildID = guildID
	if err = d.session.State.MemberAdd(member); err != nil {
		d.log(guildID).Debug("caching member failed: ", err.Error())
	}
	return member, nil
}

func (d *DiscordGateway) onReady(session *discordgo.Session, event *discordgo.Ready) {
	d.log("").Infof("connected to discord as %s (#%s) in %d guilds",
		event.User.Username, event.User.ID, len(event.Guilds))
}

func (d *DiscordGateway) onMessageCreate(session *discordgo.Session, message *discordgo.MessageCreate) {
	if message.Author == nil {
		return
	}
	d.handler.OnMessage(MessageEvent{
		GuildID:   message.GuildID,
		ChannelID: message.ChannelID,
		AuthorID:  message.Author.ID,
		AuthorBot: message.Author.Bot,
		Content:   message.Content,
	})
}

func (d *DiscordGateway) onGuildMemberAdd(session *discordgo.Session, member *discordgo.GuildMemberAdd) {
	if member.Member == nil || member.User == nil {
		return
	}
	d.handler.OnMemberJoin(MemberEvent{GuildID: member.GuildID, Member: memberModel(member.Member)})
}

func (d *DiscordGateway) onGuildMemberRemove(session *discordgo.Session, member *discordgo.GuildMemberRemove) {
	if member.Member == nil || member.User == nil {
		return
	}
	d.handler.OnMemberLeave(MemberEvent{GuildID: member.GuildID, Member: memberModel(member.Member)})
}

func (d *DiscordGateway) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	responder := &interactionResponder{session: session, interaction: interaction.Interaction}

	// commands are guild only
	if interaction.GuildID == "" || interaction.Member == nil || interaction.Member.User == nil {
		err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "Commands can only be used in a server.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			d.log("").Warn("answering direct message command failed: ", err.Error())
		}
		return
	}

	d.handler.OnCommand(invocationFromInteraction(interaction.Interaction), responder)
}

func (d *DiscordGateway) log(guildID string) *logrus.Entry {
	entry := cache.GetLogger().WithField("module", "discord").WithField("identity", string(d.tag))
	if guildID != "" {
		entry = entry.WithField("guild", guildID)
	}
	return entry
}

func invocationFromInteraction(interaction *discordgo.Interaction) *modules.Invocation {
	data := interaction.ApplicationCommandData()
	invocation := &modules.Invocation{
		GuildID:   interaction.GuildID,
		ChannelID: interaction.ChannelID,
		ActorID:   interaction.Member.User.ID,
		ActorName: interaction.Member.User.Username,
		Command:   data.Name,
		Options:   make(map[string]string),
	}

	options := data.Options
	if len(options) == 1 && (options[0].Type == discordgo.ApplicationCommandOptionSubCommand ||
		options[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup) {
		invocation.Subcommand = options[0].Name
		options = options[0].Options
	}
	for _, option := range options {
		invocation.Options[option.Name] = optionValue(option)
	}
	return invocation
}

func optionValue(option *discordgo.ApplicationCommandInteractionDataOption) string {
	switch option.Type {
	case discordgo.ApplicationCommandOptionInteger:
		return strconv.FormatInt(option.IntValue(), 10)
	case discordgo.ApplicationCommandOptionBoolean:
		return strconv.FormatBool(option.BoolValue())
	case discordgo.ApplicationCommandOptionString,
		discordgo.ApplicationCommandOptionUser,
		discordgo.ApplicationCommandOptionChannel,
		discordgo.ApplicationCommandOptionRole,
		discordgo.ApplicationCommandOptionMentionable:
		if value, ok := option.Value.(string); ok {
			return value
		}
	}
	return ""
}

func memberModel(member *discordgo.Member) models.Member {
	return models.Member{
		ID:            member.User.ID,
		Username:      member.User.Username,
		Bot:           member.User.Bot,
		TimedOutUntil: member.CommunicationDisabledUntil,
	}
}

func isRESTError(err error, code int, status int) bool {
	restErr, ok := errors.Cause(err).(*discordgo.RESTError)
	if !ok {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == code {
		return true
	}
	return restErr.Message == nil && restErr.Response != nil && restErr.Response.StatusCode == status
}
