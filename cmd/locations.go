package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/model"
	"github.com/pinecrest/jamfctl/internal/ui"
)

var locationsCmd = &cobra.Command{
	Use:       "locations [buildings|departments|sites]",
	Short:     "List the buildings, departments and sites devices can be assigned to",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"buildings", "departments", "sites"},
	RunE:      runLocations,
}

func init() {
	rootCmd.AddCommand(locationsCmd)
}

type locationList struct {
	title string
	list  func(ctx context.Context) ([]model.NamedObject, error)
}

func locationLists(ds *jamf.DeviceService) map[string]locationList {
	return map[string]locationList{
		"buildings":   {"Buildings", ds.Buildings},
		"departments": {"Departments", ds.Departments},
		"sites":       {"Sites", ds.Sites},
	}
}

func runLocations(cmd *cobra.Command, args []string) error {
	kinds := []string{"buildings", "departments", "sites"}
	if len(args) == 1 {
		kinds = args
	}
	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		lists := locationLists(ds)
		for _, kind := range kinds {
			l := lists[kind]
			objects, err := l.list(ctx)
			if err != nil {
				return err
			}
			fmt.Println(ui.Bold(l.title))
			fmt.Println(namedTable(objects))
		}
		return nil
	})
}

func namedTable(objects []model.NamedObject) string {
	rows := make([][]string, len(objects))
	for i, o := range objects {
		rows[i] = []string{strconv.Itoa(o.ID), o.Name}
	}
	return ui.Table([]string{"ID", "Name"}, rows)
}
