package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/guard"
	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/pkg/model"
)

func newOwnerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Manage the businesses you own",
	}
	cmd.AddCommand(
		newOwnerBusinessesCmd(a),
		newItemCmd(a),
		newOfferCmd(a),
		newPollCmd(a),
		newAnnouncementCmd(a),
	)
	return cmd
}

func newOwnerBusinessesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "businesses",
		Short: "List your claimed businesses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.pages.OwnerHome(cmd.Context())
			if err != nil {
				return err
			}
			if !v.Banner.IsZero() {
				return a.report(pages.Outcome{Banner: v.Banner})
			}
			if u := v.User; u != nil {
				fmt.Fprintf(a.out, "Welcome, %s\n\n", u.DisplayName())
			}
			printBusinesses(a.out, v.Businesses)
			if len(v.Businesses) > 0 {
				fmt.Fprintln(a.out, "\nManage content with: bizdir owner item|offer|poll|announcement list <place-id>")
			}
			return nil
		},
	}
	return guarded(cmd, guard.PathOwner)
}

// section builds "<kind> list|add|delete ..." subcommands for one kind of
// content. Every subcommand takes the place ID first.
func section(kind, route string, list *cobra.Command, extra ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind,
		Short: "Manage the " + kind + "s of a business",
	}
	guarded(list, route)
	cmd.AddCommand(list)
	for _, c := range extra {
		cmd.AddCommand(guarded(c, route))
	}
	return cmd
}

// listCmd prints the entries of one kind.
func listCmd[T any](a *app, kind string, load func(*pages.Pages, context.Context, string) (pages.ListView[T], error), show func(T)) *cobra.Command {
	return &cobra.Command{
		Use:   "list <place-id>",
		Short: "List the " + kind + "s of a business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := load(a.pages, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !v.Banner.IsZero() {
				return a.report(pages.Outcome{Banner: v.Banner})
			}
			if len(v.Entries) == 0 {
				fmt.Fprintf(a.out, "No %ss yet.\n", kind)
				return nil
			}
			for _, e := range v.Entries {
				show(e)
			}
			return nil
		},
	}
}

// idCmd runs one action on "<place-id> <id>".
func idCmd(a *app, use, short string, run func(p *pages.Pages, ctx context.Context, placeID, id string) (pages.Outcome, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <place-id> <id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := run(a.pages, cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
}

func newItemCmd(a *app) *cobra.Command {
	var f forms.Item
	add := &cobra.Command{
		Use:   "add <place-id>",
		Short: "Add an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.pages.AddItem(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	add.Flags().StringVar(&f.Name, "name", "", "Item name")
	add.Flags().StringVar(&f.Price, "price", "", "Price")
	add.Flags().BoolVar(&f.Available, "available", true, "Whether the item is in stock")

	var available bool
	avail := &cobra.Command{
		Use:   "set-availability <place-id> <item-id>",
		Short: "Mark an item in or out of stock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.pages.SetItemAvailability(cmd.Context(), args[0], args[1], available)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	avail.Flags().BoolVar(&available, "available", true, "In stock (--available=false for out of stock)")

	return section("item", "/owner/{placeId}/items",
		listCmd(a, "item", (*pages.Pages).Items, func(it model.Item) { printItem(a.out, it) }),
		add,
		avail,
		idCmd(a, "delete", "Delete an item", (*pages.Pages).DeleteItem),
	)
}

func newOfferCmd(a *app) *cobra.Command {
	var f forms.Offer
	add := &cobra.Command{
		Use:   "add <place-id>",
		Short: "Create an offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.pages.CreateOffer(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	add.Flags().StringVar(&f.Title, "title", "", "Offer title")
	add.Flags().StringVar(&f.Description, "description", "", "Offer description")
	add.Flags().StringVar(&f.ValidTill, "valid-till", "", "Last day of the offer (YYYY-MM-DD)")

	return section("offer", "/owner/{placeId}/offers",
		listCmd(a, "offer", (*pages.Pages).Offers, func(o model.Offer) { printOffer(a.out, o, time.Now()) }),
		add,
		idCmd(a, "delete", "Delete an offer", (*pages.Pages).DeleteOffer),
	)
}

func newPollCmd(a *app) *cobra.Command {
	var f forms.Poll
	add := &cobra.Command{
		Use:   "add <place-id>",
		Short: "Create a poll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.pages.CreatePoll(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	add.Flags().StringVar(&f.Question, "question", "", "Poll question")
	add.Flags().StringArrayVar(&f.Options, "option", nil, "Answer option (repeat, at least 2)")

	return section("poll", "/owner/{placeId}/polls",
		listCmd(a, "poll", (*pages.Pages).Polls, func(p model.Poll) { printPoll(a.out, pages.OwnerPollView(p)) }),
		add,
		idCmd(a, "end", "End a poll", (*pages.Pages).EndPoll),
		idCmd(a, "delete", "Delete a poll", (*pages.Pages).DeletePoll),
	)
}

func newAnnouncementCmd(a *app) *cobra.Command {
	var f forms.Announcement
	add := &cobra.Command{
		Use:   "add <place-id>",
		Short: "Post an announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.pages.CreateAnnouncement(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	add.Flags().StringVar(&f.Title, "title", "", "Announcement title")
	add.Flags().StringVar(&f.Message, "message", "", "Announcement text")

	return section("announcement", "/owner/{placeId}/announcements",
		listCmd(a, "announcement", (*pages.Pages).Announcements, func(an model.Announcement) { printAnnouncement(a.out, an, time.Now()) }),
		add,
		idCmd(a, "delete", "Delete an announcement", (*pages.Pages).DeleteAnnouncement),
	)
}
