package prompt_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"fonarchive/internal/account"
	"fonarchive/internal/failures"
	"fonarchive/internal/prompt"
)

func newPrompter(input string) (*prompt.Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return prompt.New(strings.NewReader(input), &out, false), &out
}

func TestAskReturnsDefaultOnEmptyAnswer(t *testing.T) {
	p, out := newPrompter("\n")
	answer, err := p.Ask("Name", "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", answer)
	require.Contains(t, out.String(), "Name [default: alice]: ")
}

func TestAskAcceptsFinalLineWithoutNewline(t *testing.T) {
	p, _ := newPrompter("bob")
	answer, err := p.Ask("Name", "")
	require.NoError(t, err)
	require.Equal(t, "bob", answer)
}

func TestAskOnClosedInputCancels(t *testing.T) {
	p, _ := newPrompter("")
	_, err := p.Ask("Name", "alice")
	require.ErrorIs(t, err, failures.ErrCancelled)
}

func TestChooseRetriesUntilValid(t *testing.T) {
	p, out := newPrompter("x\nO\n")
	answer, err := p.Choose("Pick", []prompt.Option{{Key: "o"}, {Key: "u"}}, "")
	require.NoError(t, err)
	require.Equal(t, "o", answer)
	require.Contains(t, out.String(), "Invalid input. Try again.")
}

func TestConfirm(t *testing.T) {
	p, _ := newPrompter("y\nn\n\n")
	ok, err := p.Confirm("Continue?", false)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = p.Confirm("Continue?", false)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = p.Confirm("Continue?", false)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAssumeYesUsesDefaults(t *testing.T) {
	var out bytes.Buffer
	p := prompt.New(strings.NewReader(""), &out, true)
	require.True(t, p.AssumeYes())

	answer, err := p.Ask("Name", "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", answer)

	decision, err := p.ExistingArchive("/tmp/FONarchive")
	require.NoError(t, err)
	require.Equal(t, prompt.ArchiveUnique, decision)

	working, err := p.NonEmptyWorking("/tmp/FONarchive/working")
	require.NoError(t, err)
	require.Equal(t, prompt.WorkingSkip, working)

	require.NoError(t, p.LowSpace("512 MiB"))
	require.Empty(t, out.String())
}

func TestUsernameRetriesThenSucceeds(t *testing.T) {
	p, out := newPrompter("../evil\nghost\nalice\n")
	calls := 0
	loc, err := p.Username("", 3, func(name string) (account.Locations, error) {
		calls++
		if name != "alice" {
			return account.Locations{}, errors.New("missing")
		}
		return account.Locations{Username: name, Livetype: "/lt", Desktop: "/desk"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "alice", loc.Username)
	require.Equal(t, 2, calls)
	require.Contains(t, out.String(), "Invalid username. Try again.")
	require.Contains(t, out.String(), "Attempts left: 1")
}

func TestUsernameDefaultAndCancel(t *testing.T) {
	p, _ := newPrompter("\n")
	loc, err := p.Username("carol", 3, func(name string) (account.Locations, error) {
		return account.Locations{Username: name}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "carol", loc.Username)

	p, _ = newPrompter("Cancel\n")
	_, err = p.Username("carol", 3, func(string) (account.Locations, error) {
		t.Fatal("resolver must not run after cancel")
		return account.Locations{}, nil
	})
	require.ErrorIs(t, err, failures.ErrCancelled)
}

func TestUsernameExhaustsAttempts(t *testing.T) {
	p, _ := newPrompter("a\nb\nc\nd\n")
	_, err := p.Username("", 3, func(string) (account.Locations, error) {
		return account.Locations{}, errors.New("missing")
	})
	require.ErrorIs(t, err, failures.ErrCancelled)
	require.Contains(t, err.Error(), "3 attempts")
}

func TestExistingArchiveChoices(t *testing.T) {
	p, _ := newPrompter("o\na\n")
	decision, err := p.ExistingArchive("/x")
	require.NoError(t, err)
	require.Equal(t, prompt.ArchiveOverwrite, decision)
	decision, err = p.ExistingArchive("/x")
	require.NoError(t, err)
	require.Equal(t, prompt.ArchiveAbort, decision)
}

func TestLowSpaceDeclined(t *testing.T) {
	p, _ := newPrompter("n\n")
	err := p.LowSpace("100 MiB")
	require.ErrorIs(t, err, failures.ErrCancelled)
}

func TestInteractiveFalseForBuffers(t *testing.T) {
	p, _ := newPrompter("")
	require.False(t, p.Interactive())
}
