package cli

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/siteadmin/internal/client/client"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
	"github.com/dmitrijs2005/siteadmin/internal/server/uploads"
	"github.com/spf13/cobra"
)

// listColumns are the fields shown per collection in table output.
var listColumns = map[client.Entity][]string{
	client.Blog:         {"id", "title", "author", "published", "created_at"},
	client.Team:         {"id", "name", "designation"},
	client.Testimonials: {"id", "name", "company", "rating"},
	client.Partners:     {"id", "name", "website"},
	client.Trainings:    {"id", "title", "start_date", "mode"},
	client.Contacts:     {"id", "name", "email", "req_type", "created_at"},
}

const entityHelp = "blog, team, testimonials, partners, trainings, contacts"

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Sign in and show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.signIn(ctx); err != nil {
				return err
			}
			defer a.api.Logout(ctx)

			s, err := a.api.Session(ctx)
			if err != nil {
				return err
			}
			return a.printJSON(s)
		},
	}
}

func (a *App) listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list <collection>",
		Short:   "List a collection",
		Long:    "List every record of a collection (" + entityHelp + ").",
		Aliases: []string{"ls"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := client.ParseEntity(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.signIn(ctx); err != nil {
				return err
			}
			defer a.api.Logout(ctx)

			items, err := a.api.Records(entity).List(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(items)
			}

			cols := listColumns[entity]
			t := newTable(cols...)
			for _, item := range items {
				row := make([]string, len(cols))
				for i, c := range cols {
					row[i] = cell((*item)[c])
				}
				t.addRow(row...)
			}
			fmt.Fprint(a.out, t.render())
			fmt.Fprintln(a.out, styleMuted.Render(strconv.Itoa(len(items))+" record(s)"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func (a *App) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := client.ParseEntity(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.signIn(ctx); err != nil {
				return err
			}
			defer a.api.Logout(ctx)

			item, err := a.api.Records(entity).Get(ctx, args[1])
			if err != nil {
				return err
			}
			return a.printJSON(item)
		},
	}
}

func (a *App) createCmd() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "create <collection>",
		Short: "Create a record",
		Long: `Create a record from name=value pairs. Without --set the fields are read
from standard input, one per line.

Examples:
  siteadmin create blog --set title=Hello --set content="Body" --set author=Ann
  siteadmin create partners --set name=Acme --set logo_url=null`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := client.ParseEntity(args[0])
			if err != nil {
				return err
			}
			fields, err := a.fields(sets)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.signIn(ctx); err != nil {
				return err
			}
			defer a.api.Logout(ctx)

			item, err := a.api.Records(entity).Create(ctx, fields)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, formatSuccess("created "+cell((*item)["id"])))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field assignment name=value (repeatable)")
	return cmd
}

func (a *App) updateCmd() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "update <collection> <id>",
		Short: "Patch a record",
		Long:  "Patch the given fields of a record. Fields that are not set stay unchanged.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := client.ParseEntity(args[0])
			if err != nil {
				return err
			}
			fields, err := a.fields(sets)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.signIn(ctx); err != nil {
				return err
			}
			defer a.api.Logout(ctx)

			if _, err := a.api.Records(entity).Update(ctx, args[1], fields); err != nil {
				return err
			}
			fmt.Fprintln(a.out, formatSuccess("updated "+args[1]))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field assignment name=value (repeatable)")
	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <collection> <id>",
		Short:   "Delete a record and its image",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := client.ParseEntity(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.signIn(ctx); err != nil {
				return err
			}
			defer a.api.Logout(ctx)

			if err := a.api.Records(entity).Delete(ctx, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, formatSuccess("deleted "+args[1]))
			return nil
		},
	}
}

func (a *App) uploadCmd() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "upload <bucket> <file>",
		Short: "Upload an image and print its public URL",
		Long: `Upload a JPEG, PNG, GIF or WebP image of at most 5MB.

Buckets: team_images, blog_images, testimonial_images, partner_logos, training_images.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := storage.ParseBucket(args[0])
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}

			file := uploads.File{
				Name:        filepath.Base(args[1]),
				ContentType: mime.TypeByExtension(filepath.Ext(args[1])),
				Size:        info.Size(),
				Body:        f,
			}
			if err := uploads.Validate(file); err != nil {
				return err
			}
			if _, err := uploads.ResolveFolder(bucket, folder); err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.signIn(ctx); err != nil {
				return err
			}
			defer a.api.Logout(ctx)

			url, err := a.api.Upload(ctx, bucket, folder, file)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, url)
			return nil
		},
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "folder inside the bucket; only the bucket's own folder is accepted")
	return cmd
}

func (a *App) statsCmd() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show or update the site statistics",
		Long: `Without --set, print the statistics. With --set, patch them.

Examples:
  siteadmin stats
  siteadmin stats --set programs_delivered=120 --set satisfaction_rate=97`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var fields client.Record
			if len(sets) > 0 {
				var err error
				if fields, err = ParseAssignments(sets); err != nil {
					return err
				}
			}

			if err := a.signIn(ctx); err != nil {
				return err
			}
			defer a.api.Logout(ctx)

			if fields != nil {
				st, err := a.api.UpdateStatistics(ctx, fields)
				if err != nil {
					return err
				}
				return a.printJSON(st)
			}

			st, err := a.api.Statistics(ctx)
			if err != nil {
				return err
			}
			return a.printJSON(st)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field assignment name=value (repeatable)")
	return cmd
}

func (a *App) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.signIn(ctx); err != nil {
				return err
			}
			defer a.api.Logout(ctx)

			d, err := a.api.Dashboard(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "team members: %d\npartners:     %d\n", d.TeamCount, d.PartnerCount)
			if d.Statistics != nil {
				fmt.Fprintf(a.out, "programs delivered: %d, professionals trained: %d, satisfaction: %d%%, corporate partners: %d\n",
					d.Statistics.ProgramsDelivered, d.Statistics.ProfessionalsTrained,
					d.Statistics.SatisfactionRate, d.Statistics.CorporatePartners)
			}

			t := newTable("id", "title", "author", "published")
			for _, p := range d.RecentPosts {
				t.addRow(p.ID, p.Title, p.Author, strconv.FormatBool(p.Published))
			}
			fmt.Fprint(a.out, t.render())
			return nil
		},
	}
}

// fields returns the --set assignments, or reads them from input when none
// were given.
func (a *App) fields(sets []string) (client.Record, error) {
	if len(sets) > 0 {
		return ParseAssignments(sets)
	}
	return GetFields(a.reader, a.out)
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
