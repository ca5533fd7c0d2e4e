package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/srefhub/internal/ledger"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
)

func printCode(w io.Writer, c rpc.Code) {
	fmt.Fprintf(w, "%s  %-24q --sref %s  +%d -%d  saves %d  copies %d\n",
		c.ID, c.Title, c.CodeValue, c.Upvotes, c.Downvotes, c.SaveCount, c.CopyCount)
}

func printCodes(w io.Writer, codes []rpc.Code) {
	if len(codes) == 0 {
		fmt.Fprintln(w, "No codes.")
		return
	}
	for _, c := range codes {
		printCode(w, c)
	}
}

func printTally(w io.Writer, t ledger.Tally) {
	fmt.Fprintf(w, "+%d -%d\n", t.Upvotes, t.Downvotes)
}

func (a *App) Add(ctx context.Context) error {
	value, err := getSimpleText(a.reader, "Enter code", a.out)
	if err != nil {
		return err
	}
	version, err := getSimpleText(a.reader, "Enter sv version (optional)", a.out)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Enter tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}

	in := &rpc.CreateCodeRequest{CodeValue: value, Title: title, Tags: splitTags(tags)}
	sv, err := parseOptionalInt(version)
	if err != nil {
		return err
	}
	if sv != nil {
		in.SVVersion = *sv
	}

	c, err := a.catalog.Add(ctx, in)
	if err != nil {
		return err
	}
	printCode(a.out, *c)
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	c, err := a.catalog.Show(ctx, id)
	if err != nil {
		return err
	}

	printCode(a.out, *c)
	if c.SVVersion > 0 {
		fmt.Fprintf(a.out, "  sv %d\n", c.SVVersion)
	}
	if len(c.Tags) > 0 {
		fmt.Fprintf(a.out, "  tags: %s\n", strings.Join(c.Tags, ", "))
	}
	for _, u := range c.ImageURLs {
		fmt.Fprintf(a.out, "  image: %s\n", u)
	}
	return nil
}

// readCriteria prompts for every search filter; empty answers leave the
// filter unset.
func (a *App) readCriteria() (*rpc.SearchCriteria, error) {
	answers := make([]string, 0, 6)
	for _, p := range []string{
		"Text in title or code (optional)",
		"Tags, comma separated (optional)",
		"sv version (optional)",
		"Minimum upvotes (optional)",
		"Created from, YYYY-MM-DD (optional)",
		"Created to, YYYY-MM-DD (optional)",
	} {
		s, err := getSimpleText(a.reader, p, a.out)
		if err != nil {
			return nil, err
		}
		answers = append(answers, s)
	}

	c := &rpc.SearchCriteria{Query: answers[0], Tags: splitTags(answers[1])}

	var err error
	if c.SVVersion, err = parseOptionalInt(answers[2]); err != nil {
		return nil, err
	}
	minUp, err := parseOptionalInt(answers[3])
	if err != nil {
		return nil, err
	}
	if minUp != nil {
		v := int64(*minUp)
		c.UpvotesMin = &v
	}
	if c.From, err = parseOptionalDate(answers[4]); err != nil {
		return nil, err
	}
	if c.To, err = parseOptionalDate(answers[5]); err != nil {
		return nil, err
	}
	return c, nil
}

func (a *App) Search(ctx context.Context) error {
	criteria, err := a.readCriteria()
	if err != nil {
		return err
	}
	codes, err := a.catalog.Search(ctx, criteria)
	if err != nil {
		return err
	}
	printCodes(a.out, codes)
	return nil
}

func (a *App) Copy(ctx context.Context, id string) error {
	text, err := a.catalog.Copy(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, text)
	return nil
}

func (a *App) Save(ctx context.Context, id string) error {
	if err := a.catalog.Save(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

func (a *App) Saved(ctx context.Context) error {
	codes, err := a.catalog.Saved(ctx)
	if err != nil {
		return err
	}
	printCodes(a.out, codes)
	return nil
}

func (a *App) Vote(ctx context.Context, id string, isUpvote bool) error {
	res, err := a.catalog.Vote(ctx, a.session, id, isUpvote)
	if err != nil {
		return err
	}

	if res.Flipped {
		fmt.Fprint(a.out, "Vote changed. ")
	} else {
		fmt.Fprint(a.out, "Voted. ")
	}
	printTally(a.out, res.Tally)
	if !res.Reconciled {
		fmt.Fprintln(a.out, "(server recount pending, run 'tally' to refresh)")
	}
	return nil
}

func (a *App) Tally(ctx context.Context, id string) error {
	t, err := a.catalog.Tally(ctx, id)
	if err != nil {
		return err
	}
	printTally(a.out, t)
	return nil
}

func (a *App) Upload(ctx context.Context, codeID, path string) error {
	slot, err := a.catalog.UploadImage(ctx, codeID, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded as image #%d (%s)\n", slot.Position, slot.StorageKey)
	return nil
}
