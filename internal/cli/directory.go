package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/bizdir/internal/claim"
	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/guard"
	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/internal/search"
	"github.com/me/bizdir/pkg/model"
)

func newSearchCmd(a *app) *cobra.Command {
	var f forms.Search

	cmd := &cobra.Command{
		Use:   "search [location] [type]",
		Short: "Search businesses by location and type",
		Long: `Search businesses by location and type. Claimed businesses are listed first.
Without arguments the last search of the profile is shown again.

Popular types: ` + strings.Join(search.PopularTypes, ", "),
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				f.Location = args[0]
			}
			if len(args) > 1 {
				f.Type = args[1]
			}
			if f.Location == "" && f.Type == "" {
				v := a.pages.Home(cmd.Context())
				if !v.Searched {
					fmt.Fprintln(a.out, "No previous search. Try: bizdir search <location> <type>")
					return nil
				}
				fmt.Fprintf(a.out, "Last search: %s in %s\n\n", v.Type, v.Location)
				printBusinesses(a.out, v.Results)
				return nil
			}

			v, err := a.pages.Search(cmd.Context(), f)
			if err != nil {
				return err
			}
			if !v.Banner.IsZero() {
				return a.report(pages.Outcome{Banner: v.Banner, Errors: v.Errors})
			}
			printBusinesses(a.out, v.Results)
			for _, b := range v.Results {
				if v.CanClaim(b) {
					fmt.Fprintln(a.out, "\nUnclaimed businesses can be claimed with: bizdir claim <place-id>")
					break
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.Location, "location", "l", "", "Area to search in")
	cmd.Flags().StringVarP(&f.Type, "type", "t", "", "Business type, e.g. Cafe")
	return guarded(cmd, guard.PathHome)
}

func newBusinessCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "business <place-id>",
		Short: "Show a business profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.pages.BusinessProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if v.Business == nil {
				return a.report(pages.Outcome{Banner: v.Banner})
			}
			printProfile(a.out, v, time.Now())
			return nil
		},
	}
	return guarded(cmd, "/business/{placeId}")
}

func newVoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote <place-id> <poll-id> <option>",
		Short: "Vote on a poll of a business",
		Long:  "Vote on a poll. The option is its 1-based number as shown by 'bizdir business'.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("option must be a number, got %q", args[2])
			}
			v, err := a.pages.BusinessProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if v.Business == nil {
				return a.report(pages.Outcome{Banner: v.Banner})
			}
			var poll *model.Poll
			for i := range v.Polls {
				if v.Polls[i].Poll.ID == args[1] {
					poll = &v.Polls[i].Poll
				}
			}
			if poll == nil {
				return fmt.Errorf("poll %s not found on business %s", args[1], args[0])
			}
			out, err := a.pages.Vote(cmd.Context(), *poll, n-1)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	return guarded(cmd, "/business/{placeId}")
}

func newClaimCmd(a *app) *cobra.Command {
	var (
		email   string
		otp     string
		details bool
		info    model.BusinessInfo
	)

	cmd := &cobra.Command{
		Use:   "claim <place-id>",
		Short: "Claim an unclaimed business",
		Long: `Claim an unclaimed business in three steps: a business email, the code
emailed to it, then the business details.

On a terminal the steps are prompted for. Otherwise run the steps one at a time:
  bizdir claim <place-id> --email biz@example.com
  bizdir claim <place-id> --email biz@example.com --otp 123456 --phone ... --hours ...
  bizdir claim <place-id> --details --phone ...     (retry the last step)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			step := claim.StepEmail
			switch {
			case details:
				step = claim.StepDetails
			case otp != "":
				if email == "" {
					return errors.New("--otp needs the --email the code was sent to")
				}
				step = claim.StepOTP
			}
			flow, err := a.pages.ResumeClaim(ctx, args[0], step, email)
			if errors.Is(err, pages.ErrForbidden) {
				return errors.New("only business owners can claim, and only unclaimed businesses")
			}
			if err != nil {
				return a.report(pages.Outcome{Banner: pages.Banner{Kind: pages.BannerError, Text: model.MessageOf(err, "Failed to load business profile")}})
			}
			fmt.Fprintf(a.out, "Claiming %s\n", flow.Business().Name)

			if a.interactive() && email == "" && otp == "" && !details {
				return a.claimInteractive(cmd, flow)
			}

			switch step {
			case claim.StepEmail:
				if err := a.fill(&email, "Business email"); err != nil {
					return err
				}
				err = flow.SubmitEmail(ctx, email)
				if err == nil {
					fmt.Fprintf(a.out, "Next: bizdir claim %s --email %s --otp <code> [--phone ... --website ... --hours ... --description ...]\n", args[0], email)
				}
			case claim.StepOTP:
				if err = flow.SubmitOTP(ctx, otp); err == nil {
					err = flow.SubmitDetails(ctx, mergeInfo(flow.Details(), info))
				}
			case claim.StepDetails:
				err = flow.SubmitDetails(ctx, mergeInfo(flow.Details(), info))
			}
			return a.claimReport(flow, err)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Business email to send the claim code to")
	cmd.Flags().StringVar(&otp, "otp", "", "Claim code from the business email")
	cmd.Flags().BoolVar(&details, "details", false, "Only submit the business details (after the code was accepted)")
	cmd.Flags().StringVar(&info.Description, "description", "", "Business description")
	cmd.Flags().StringVar(&info.Phone, "phone", "", "Business phone")
	cmd.Flags().StringVar(&info.Website, "website", "", "Business website")
	cmd.Flags().StringVar(&info.Hours, "hours", "", "Opening hours")
	return guarded(cmd, "/business/{placeId}")
}

// claimInteractive walks the flow on a terminal. Entering "back" at the
// code prompt returns to the email step.
func (a *app) claimInteractive(cmd *cobra.Command, flow *claim.Flow) error {
	ctx := cmd.Context()
	for !flow.Done() {
		fmt.Fprintf(a.out, "\nStep %d of 3\n", flow.Step().Number())
		var err error
		switch flow.Step() {
		case claim.StepEmail:
			var email string
			if email, err = a.prompt("Business email"); err != nil {
				return err
			}
			err = flow.SubmitEmail(ctx, email)
		case claim.StepOTP:
			fmt.Fprintf(a.out, "A code was sent to %s (type 'back' to change the email)\n", flow.Email())
			var code string
			if code, err = a.prompt("Code"); err != nil {
				return err
			}
			if strings.EqualFold(code, "back") {
				err = flow.Back()
				break
			}
			err = flow.SubmitOTP(ctx, code)
		case claim.StepDetails:
			info := flow.Details()
			for _, p := range []struct {
				v     *string
				label string
			}{{&info.Description, "Description"}, {&info.Phone, "Phone"}, {&info.Website, "Website"}, {&info.Hours, "Hours"}} {
				s, perr := a.prompt(fmt.Sprintf("%s [%s]", p.label, *p.v))
				if perr != nil {
					return perr
				}
				if s != "" {
					*p.v = s
				}
			}
			err = flow.SubmitDetails(ctx, info)
		}
		if abandoned(err) || ctx.Err() != nil {
			return pages.ErrAbandoned
		}
		if err != nil {
			printBanner(a.out, pages.ClaimOutcome(flow, err).Banner)
		}
	}
	return a.claimReport(flow, nil)
}

func (a *app) claimReport(flow *claim.Flow, err error) error {
	if err == nil && !flow.Done() {
		printBanner(a.out, pages.ClaimOutcome(flow, nil).Banner)
		return nil
	}
	return a.report(pages.ClaimOutcome(flow, err))
}

// mergeInfo overlays the non-empty fields of set on base.
func mergeInfo(base, set model.BusinessInfo) model.BusinessInfo {
	if set.Description != "" {
		base.Description = set.Description
	}
	if set.Phone != "" {
		base.Phone = set.Phone
	}
	if set.Website != "" {
		base.Website = set.Website
	}
	if set.Hours != "" {
		base.Hours = set.Hours
	}
	return base
}
