package service

import (
	"fmt"
	"text/tabwriter"

	"yatube/app/services"

	"go.uber.org/zap"
)

// CreateGroup adds a group to the database at dbPath.
func CreateGroup(dbPath, title, slug, description string, logger *zap.Logger, console Console) error {
	store, err := openStore(dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	group, err := services.NewGroupService(store.Groups()).CreateGroup(title, slug, description)
	if err != nil {
		return err
	}
	logger.Info("group created", zap.Int("group_id", group.ID), zap.String("slug", group.Slug))
	console.printf("Group %q created with id %d\n", group.Slug, group.ID)
	return nil
}

// ListGroups prints all groups as a table.
func ListGroups(dbPath string, logger *zap.Logger, console Console) error {
	store, err := openStore(dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	groups, err := services.NewGroupService(store.Groups()).ListGroups()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		console.printf("No groups\n")
		return nil
	}

	tw := tabwriter.NewWriter(console.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tTITLE")
	for _, g := range groups {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
	}
	return tw.Flush()
}
