package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/srefhub/internal/rpc"
)

func (a *App) Folders(ctx context.Context) error {
	folders, err := a.catalog.Folders(ctx)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		fmt.Fprintln(a.out, "No folders.")
		return nil
	}

	for _, f := range folders {
		kind := "folder"
		if f.IsSmart {
			kind = "smart"
		}
		parent := ""
		if f.ParentID != nil {
			parent = " in " + *f.ParentID
		}
		fmt.Fprintf(a.out, "%s  %-6s %s%s\n", f.ID, kind, f.Name, parent)
	}
	return nil
}

// MkFolder creates a plain folder, or a smart one whose contents are the
// results of a saved search.
func (a *App) MkFolder(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Folder name", a.out)
	if err != nil {
		return err
	}
	parent, err := getSimpleText(a.reader, "Parent folder id (optional)", a.out)
	if err != nil {
		return err
	}
	smart, err := getYesNo(a.reader, "Smart folder?", a.out)
	if err != nil {
		return err
	}

	in := &rpc.CreateFolderRequest{Name: name}
	if parent != "" {
		in.ParentID = &parent
	}
	if smart {
		if in.Criteria, err = a.readCriteria(); err != nil {
			return err
		}
	}

	f, err := a.catalog.CreateFolder(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", f.ID)
	return nil
}

func (a *App) AddTo(ctx context.Context, folderID, codeID string) error {
	if err := a.catalog.AddToFolder(ctx, folderID, codeID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Added.")
	return nil
}

func (a *App) Folder(ctx context.Context, id string) error {
	codes, err := a.catalog.FolderCodes(ctx, id)
	if err != nil {
		return err
	}
	printCodes(a.out, codes)
	return nil
}
