package prompt

import (
	"fmt"

	"fonarchive/internal/account"
	"fonarchive/internal/failures"
)

// ArchiveDecision is the answer to the existing-archive question.
type ArchiveDecision string

const (
	ArchiveOverwrite ArchiveDecision = "o"
	ArchiveUnique    ArchiveDecision = "u"
	ArchiveAbort     ArchiveDecision = "a"
)

// WorkingDecision is the answer to the non-empty working directory question.
type WorkingDecision string

const (
	WorkingClear WorkingDecision = "c"
	WorkingSkip  WorkingDecision = "s"
)

// Resolver turns an accepted username into account locations, returning an
// error when they do not exist.
type Resolver func(username string) (account.Locations, error)

// Username asks for the account name up to attempts times. Empty input falls
// back to def. Entering "cancel" or running out of attempts returns an error
// wrapping failures.ErrCancelled.
func (p *Prompter) Username(def string, attempts int, resolve Resolver) (account.Locations, error) {
	attempts = max(attempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		answer, err := p.Ask("Enter your account username", def)
		if err != nil {
			return account.Locations{}, err
		}
		if account.IsCancel(answer) {
			return account.Locations{}, failures.Wrap(failures.ErrCancelled, "prompt", "username", "user cancelled username prompt", nil)
		}
		name, ok := account.SanitizeUsername(answer)
		if !ok {
			p.Printf("Invalid username. Try again.\n")
			if p.assumeYes {
				break
			}
			continue
		}
		loc, err := resolve(name)
		if err == nil {
			return loc, nil
		}
		p.Printf("Could not find livetype or Desktop folder for '%s'. Attempts left: %d\n", name, attempts-attempt)
		if p.assumeYes {
			return account.Locations{}, failures.Wrap(failures.ErrSetup, "prompt", "username", fmt.Sprintf("no font cache for %q", name), err)
		}
	}
	return account.Locations{}, failures.Wrap(failures.ErrCancelled, "prompt", "username",
		fmt.Sprintf("no valid username after %d attempts", attempts), nil)
}

// ExistingArchive asks what to do when the archive folder already exists.
// Assume-yes picks a unique sibling name so nothing is deleted.
func (p *Prompter) ExistingArchive(path string) (ArchiveDecision, error) {
	answer, err := p.Choose(
		fmt.Sprintf("%s exists. Overwrite (o), use unique name (u) or abort (a)?", path),
		[]Option{
			{Key: string(ArchiveOverwrite), Label: "overwrite"},
			{Key: string(ArchiveUnique), Label: "unique name"},
			{Key: string(ArchiveAbort), Label: "abort"},
		},
		string(ArchiveUnique),
	)
	if err != nil {
		return "", err
	}
	return ArchiveDecision(answer), nil
}

// NonEmptyWorking asks whether to clear a working directory left by an
// earlier run. Assume-yes keeps it.
func (p *Prompter) NonEmptyWorking(path string) (WorkingDecision, error) {
	answer, err := p.Choose(
		fmt.Sprintf("%s is not empty. Clear (c) or skip (s)?", path),
		[]Option{
			{Key: string(WorkingClear), Label: "clear"},
			{Key: string(WorkingSkip), Label: "skip"},
		},
		string(WorkingSkip),
	)
	if err != nil {
		return "", err
	}
	return WorkingDecision(answer), nil
}

// LowSpace asks whether to continue despite low free space. Declining
// returns an error wrapping failures.ErrCancelled.
func (p *Prompter) LowSpace(free string) error {
	ok, err := p.Confirm(fmt.Sprintf("WARNING: Only %s free. Continue?", free), false)
	if err != nil {
		return err
	}
	if !ok {
		return failures.Wrap(failures.ErrCancelled, "prompt", "disk space", "user declined to continue with low disk space", nil)
	}
	return nil
}
