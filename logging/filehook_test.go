package logging

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHookWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	hook, err := NewLogrusFileHook(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	require.NoError(t, err)

	log := logrus.New()
	log.Out = ioutil.Discard
	log.Hooks.Add(hook)
	log.WithField("module", "store").Info("loaded 2 guild configs")
	log.WithField("module", "mod").Warn("missing permission")
	require.NoError(t, hook.Close())

	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"module":"store"`)
	assert.Contains(t, lines[1], `"level":"warning"`)
}

func TestFileHookOpenError(t *testing.T) {
	_, err := NewLogrusFileHook(filepath.Join(t.TempDir(), "missing", "bot.log"), os.O_APPEND|os.O_RDWR, 0666)
	assert.Error(t, err)
}
