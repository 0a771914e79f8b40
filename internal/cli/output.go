package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/pkg/model"
)

func printBanner(w io.Writer, b pages.Banner) {
	if b.IsZero() {
		return
	}
	mark := "*"
	switch b.Kind {
	case pages.BannerSuccess:
		mark = "OK"
	case pages.BannerError:
		mark = "!!"
	}
	fmt.Fprintf(w, "%s %s\n", mark, b.Text)
}

func printFieldErrors(w io.Writer, errs forms.Errors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		fmt.Fprintf(w, "   %s: %s\n", f, errs[f])
	}
}

// report prints an outcome and the command to run next. A failed outcome
// becomes errReported.
func (a *app) report(out pages.Outcome) error {
	printBanner(a.out, out.Banner)
	if len(out.Errors) > 1 {
		printFieldErrors(a.out, out.Errors)
	}
	if out.Navigate != nil {
		if next := nextCommand(out.Navigate); next != "" {
			fmt.Fprintf(a.out, "Next: %s\n", next)
		}
	}
	if out.Failed() {
		return errReported
	}
	return nil
}

// nextCommand maps a navigation onto the command that shows the target page.
func nextCommand(nav *pages.Navigation) string {
	to := nav.To
	switch {
	case to == "/verify-email":
		return "bizdir verify-email --email " + nav.State.Email + " --otp <code>"
	case to == "/verify-otp":
		return "bizdir verify-otp --email " + nav.State.Email + " --otp <code>"
	case to == "/update-password":
		return "bizdir update-password --token " + nav.State.ResetToken
	case to == "/login":
		return "bizdir login"
	case to == "/signup":
		return "bizdir signup"
	case to == "/forgot-password":
		return "bizdir forgot-password"
	case to == "/":
		return "bizdir search"
	case to == "/owner":
		return "bizdir owner businesses"
	case strings.HasPrefix(to, "/business/"):
		return "bizdir business " + strings.TrimPrefix(to, "/business/")
	case strings.HasPrefix(to, "/owner/"):
		parts := strings.Split(strings.TrimPrefix(to, "/owner/"), "/")
		if len(parts) == 2 {
			return "bizdir owner " + strings.TrimSuffix(parts[1], "s") + " list " + parts[0]
		}
	}
	return ""
}

func printBusinesses(w io.Writer, list []model.Business) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No businesses found.")
		return
	}
	fmt.Fprintf(w, "%-28s  %-30s  %-8s  %s\n", "PLACE ID", "NAME", "CLAIMED", "ADDRESS")
	fmt.Fprintf(w, "%-28s  %-30s  %-8s  %s\n", "--------", "----", "-------", "-------")
	for _, b := range list {
		claimed := "no"
		if b.Claimed {
			claimed = "yes"
		}
		fmt.Fprintf(w, "%-28s  %-30s  %-8s  %s\n", b.PlaceID, truncate(b.Name, 30), claimed, b.Address)
	}
}

func printProfile(w io.Writer, v pages.ProfileView, now time.Time) {
	b := v.Business
	fmt.Fprintf(w, "%s\n", b.Name)
	fmt.Fprintf(w, "  Place ID:  %s\n", b.PlaceID)
	printField(w, "Category", b.Category)
	printField(w, "Address", b.Address)
	printField(w, "Phone", b.Phone)
	printField(w, "Website", b.Website)
	printField(w, "Hours", b.Hours)
	if b.Rating > 0 {
		fmt.Fprintf(w, "  Rating:    %.1f\n", b.Rating)
	}
	printField(w, "Directions", v.DirectionsURL)
	if b.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", b.Description)
	}

	switch {
	case v.ShowDashboard:
		fmt.Fprintln(w, "\nYou own this business. Manage it with: bizdir owner businesses")
	case v.CanClaim:
		fmt.Fprintf(w, "\nUnclaimed. Claim it with: bizdir claim %s\n", b.PlaceID)
	}

	if !b.Claimed {
		return
	}
	if len(v.Announcements) > 0 {
		fmt.Fprintln(w, "\nAnnouncements:")
		for _, an := range v.Announcements {
			printAnnouncement(w, an, now)
		}
	}
	if offers := v.ActiveOffers(now); len(offers) > 0 {
		fmt.Fprintln(w, "\nOffers:")
		for _, o := range offers {
			printOffer(w, o, now)
		}
	}
	if len(v.Items) > 0 {
		fmt.Fprintln(w, "\nItems:")
		for _, it := range v.Items {
			printItem(w, it)
		}
	}
	if len(v.Polls) > 0 {
		fmt.Fprintln(w, "\nPolls:")
		for _, p := range v.Polls {
			printPoll(w, p)
		}
	}
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "  %-10s %s\n", label+":", value)
}

func printItem(w io.Writer, it model.Item) {
	stock := "available"
	if !it.Available {
		stock = "out of stock"
	}
	fmt.Fprintf(w, "  [%s] %-30s  %10s  %s\n", it.ID, truncate(it.Name, 30), humanize.CommafWithDigits(it.Price, 2), stock)
}

func printOffer(w io.Writer, o model.Offer, now time.Time) {
	fmt.Fprintf(w, "  [%s] %s - %s (%s)\n", o.ID, o.Title, o.Description, offerValidity(o, now))
}

// offerValidity is "Valid till <date>" or "Expired on <date>".
func offerValidity(o model.Offer, now time.Time) string {
	until := o.ValidUntil()
	if until.IsZero() {
		return "Valid till " + o.ValidTill
	}
	date := until.Format("Jan 2, 2006")
	if o.IsExpired(now) {
		return "Expired on " + date
	}
	return "Valid till " + date + ", " + humanize.RelTime(until, now, "ago", "from now")
}

func printAnnouncement(w io.Writer, an model.Announcement, now time.Time) {
	posted := ""
	if t := an.Posted(); !t.IsZero() {
		posted = " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
	}
	fmt.Fprintf(w, "  [%s] %s%s\n      %s\n", an.ID, an.Title, posted, an.Message)
}

func printPoll(w io.Writer, v pages.PollView) {
	state := "open"
	if !v.Poll.IsActive {
		state = "ended"
	}
	fmt.Fprintf(w, "  [%s] %s (%s, %s)\n", v.Poll.ID, v.Poll.Question, state, pollVotes(v.Total))
	for i, opt := range v.Poll.Options {
		if v.ShowResults {
			fmt.Fprintf(w, "      %d. %-30s %3d%%  %s\n", i+1, truncate(opt.Text, 30), v.Percentages[i], pollVotes(opt.Votes))
		} else {
			fmt.Fprintf(w, "      %d. %s\n", i+1, opt.Text)
		}
	}
	switch {
	case v.HasVoted:
		fmt.Fprintln(w, "      You voted on this poll.")
	case v.CanVote:
		fmt.Fprintf(w, "      Vote with: bizdir vote %s %s <option>\n", v.Poll.PlaceID, v.Poll.ID)
	}
}

func pollVotes(n int) string {
	if n == 1 {
		return pages.VotesLabel(n)
	}
	return humanize.Comma(int64(n)) + " votes"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
