package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/responsio"
	"github.com/aretw0/responsio/pkg/adapters/file"
	"github.com/aretw0/responsio/pkg/config"
	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/history"
	"github.com/aretw0/responsio/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "responsio version "+responsio.Version+"\n", run(t, "version"))
}

func TestHistoryCommands(t *testing.T) {
	dir := t.TempDir()
	store := storage.New(context.Background(), file.New(dir))
	log := history.New(store)
	require.NoError(t, log.Append(domain.UserFragment("Hello")))
	require.NoError(t, log.Append(domain.BotFragment("Hi<br/>there")))

	common := []string{"--config", filepath.Join(dir, "absent.yaml"), "--storage", "file", "--storage-path", dir}
	with := func(args ...string) []string { return append(args, common...) }

	out := run(t, with("history", "show")...)
	assert.Equal(t, "user: Hello\nbot: Hi\nthere\n", out)

	out = run(t, with("history", "ls")...)
	assert.Contains(t, out, domain.Namespace+" (current)")

	page := filepath.Join(dir, "page.html")
	run(t, with("history", "render", "--title", "Support", "--out", page)...)
	data, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hi<br/>there")
	assert.Contains(t, string(data), ">Support<")

	out = run(t, with("history", "show", "--raw")...)
	assert.Contains(t, out, domain.UserFragment("Hello"))

	out = run(t, with("history", "clear")...)
	assert.Equal(t, "Removed 2 messages\n", out)

	out = run(t, with("history", "show")...)
	assert.Equal(t, "No messages found.\n", out)
}

func TestOpenMedium_Encrypted(t *testing.T) {
	dir := t.TempDir()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	s := config.Defaults().Storage
	s.Path = dir
	s.EncryptionKey = base64.StdEncoding.EncodeToString(key)

	medium, closer, err := openMedium(s)
	require.NoError(t, err)
	defer closer.Close()

	store := storage.New(context.Background(), medium)
	require.Equal(t, storage.Durable, store.Strategy())
	require.NoError(t, store.Set("history", []string{"top secret"}))

	raw, err := os.ReadFile(filepath.Join(dir, domain.Namespace+".json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "top secret")

	s.EncryptionKey = "short"
	_, _, err = openMedium(s)
	assert.Error(t, err)
}

func TestOpenMedium_Drivers(t *testing.T) {
	s := config.Defaults().Storage

	s.Driver = config.DriverMemory
	medium, closer, err := openMedium(s)
	require.NoError(t, err)
	assert.NoError(t, medium.Probe(context.Background()))
	assert.NoError(t, closer.Close())

	s.Driver = config.DriverSQLite
	s.Path = filepath.Join(t.TempDir(), "history.db")
	medium, closer, err = openMedium(s)
	require.NoError(t, err)
	assert.NoError(t, medium.Probe(context.Background()))
	assert.NoError(t, closer.Close())

	s.Driver = "floppy"
	_, _, err = openMedium(s)
	assert.Error(t, err)
}
