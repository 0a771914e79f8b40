package ui

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/pkg/model"
)

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"price": func(p float64) string {
		return humanize.CommafWithDigits(p, 2)
	},
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return humanize.Time(t)
	},
	"validity": func(o model.Offer) string {
		until := o.ValidUntil()
		if until.IsZero() {
			return "Valid till " + o.ValidTill
		}
		return "Valid till " + until.Format("Jan 2, 2006")
	},
	"votes":     pages.VotesLabel,
	"ownerPoll": pages.OwnerPollView,
	"pct": func(v pages.PollView, i int) int {
		if i < len(v.Percentages) {
			return v.Percentages[i]
		}
		return 0
	},
	"add": func(a, b int) int {
		return a + b
	},
	"bannerClass": func(k pages.BannerKind) string {
		switch k {
		case pages.BannerSuccess:
			return "bg-green-50 border-green-400 text-green-800"
		case pages.BannerError:
			return "bg-red-50 border-red-400 text-red-800"
		default:
			return "bg-blue-50 border-blue-400 text-blue-800"
		}
	},
}

// renderTemplate renders a page template inside the layout.
func renderTemplate(w io.Writer, name string, data map[string]any) error {
	content, ok := templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	layout, ok := templates["layout"]
	if !ok {
		return fmt.Errorf("layout template not found")
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	if _, err := tmpl.New("content").Parse(content); err != nil {
		return fmt.Errorf("parse content: %w", err)
	}
	for compName, compContent := range templates {
		if strings.HasPrefix(compName, "components/") {
			if _, err := tmpl.New(strings.TrimPrefix(compName, "components/")).Parse(compContent); err != nil {
				return fmt.Errorf("parse component %s: %w", compName, err)
			}
		}
	}
	return tmpl.Execute(w, data)
}

const (
	inputClass  = `class="mt-1 block w-full rounded-md border border-gray-300 px-3 py-2 shadow-sm focus:border-indigo-500 focus:outline-none"`
	buttonClass = `class="rounded-md bg-indigo-600 px-4 py-2 text-sm font-medium text-white hover:bg-indigo-700"`
)

// templates holds all template content.
var templates = map[string]string{
	"layout": `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    {{with .Refresh}}<meta http-equiv="refresh" content="{{.Seconds}};url={{.URL}}">{{end}}
    <title>{{.Title}}</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-50 min-h-screen">
    <nav class="bg-white shadow-sm border-b">
        <div class="max-w-5xl mx-auto px-4 flex justify-between h-14 items-center">
            <a href="/" class="text-xl font-bold text-indigo-600">Local Business Directory</a>
            <div class="flex items-center space-x-4 text-sm">
            {{if .User}}
                <a href="/" class="text-gray-600 hover:text-gray-900">Search</a>
                {{if .User.IsOwner}}<a href="/owner" class="text-gray-600 hover:text-gray-900">My Businesses</a>{{end}}
                <span class="text-gray-500">{{.User.DisplayName}}</span>
                <form method="post" action="/logout"><button type="submit" class="text-gray-600 hover:text-gray-900">Logout</button></form>
            {{else}}
                <a href="/login" class="text-gray-600 hover:text-gray-900">Login</a>
                <a href="/signup" class="text-gray-600 hover:text-gray-900">Sign Up</a>
                <a href="/signup-owner" class="text-gray-600 hover:text-gray-900">Register Your Business</a>
            {{end}}
            </div>
        </div>
    </nav>
    <main class="max-w-5xl mx-auto py-6 px-4">
        {{template "banner" .Banner}}
        {{template "content" .}}
    </main>
</body>
</html>`,

	"components/banner": `{{define "banner"}}{{if .Text}}
<div role="alert" class="mb-4 border-l-4 p-3 {{bannerClass .Kind}}">{{.Text}}</div>
{{end}}{{end}}`,

	"components/field-error": `{{define "field-error"}}{{if .}}<p class="mt-1 text-sm text-red-600">{{.}}</p>{{end}}{{end}}`,

	"error": `{{define "content"}}
<div class="bg-white shadow rounded-lg p-6 text-center">
    <p class="text-gray-700">{{.Message}}</p>
    <a href="/" class="mt-4 inline-block text-indigo-600">Back to search</a>
</div>
{{end}}`,

	"loading": `{{define "content"}}<p class="text-gray-500">Loading...</p>{{end}}`,

	"signup": `{{define "content"}}
<div class="max-w-md mx-auto bg-white shadow rounded-lg p-6">
    <h1 class="text-2xl font-bold mb-4">{{.Heading}}</h1>
    <form method="post" action="{{.Action}}" class="space-y-4">
        <div>
            <label for="name" class="block text-sm font-medium">{{if .Owner}}Owner Name{{else}}Name{{end}}</label>
            <input id="name" name="name" value="{{.Form.Name}}" ` + inputClass + `>
            {{template "field-error" (.Errors.Get "name")}}
        </div>
        <div>
            <label for="email" class="block text-sm font-medium">Email</label>
            <input id="email" name="email" type="email" value="{{.Form.Email}}" ` + inputClass + `>
            {{template "field-error" (.Errors.Get "email")}}
        </div>
        <div>
            <label for="password" class="block text-sm font-medium">Password</label>
            <input id="password" name="password" type="password" ` + inputClass + `>
            {{template "field-error" (.Errors.Get "password")}}
        </div>
        <button type="submit" ` + buttonClass + `>{{if .Owner}}Create Owner Account{{else}}Sign Up{{end}}</button>
    </form>
    <p class="mt-4 text-sm">Already have an account? <a href="/login" class="text-indigo-600">Log in</a></p>
    {{if .Owner}}
    <p class="text-sm">Not a business owner? <a href="/signup" class="text-indigo-600">Sign up as a user</a></p>
    {{else}}
    <p class="text-sm">Own a business? <a href="/signup-owner" class="text-indigo-600">Register as an owner</a></p>
    {{end}}
</div>
{{end}}`,

	"otp": `{{define "content"}}
<div class="max-w-md mx-auto bg-white shadow rounded-lg p-6">
    <h1 class="text-2xl font-bold mb-2">{{.Title}}</h1>
    <p class="text-sm text-gray-600 mb-4">Enter the 6-digit code sent to <strong>{{.Email}}</strong>.</p>
    <form method="post" action="{{.Action}}" class="space-y-4">
        <div>
            <label for="otp" class="block text-sm font-medium">Code</label>
            <input id="otp" name="otp" inputmode="numeric" maxlength="6" autocomplete="one-time-code" ` + inputClass + `>
            {{template "field-error" (.Errors.Get "otp")}}
        </div>
        <button type="submit" ` + buttonClass + `>Verify</button>
    </form>
</div>
{{end}}`,

	"login": `{{define "content"}}
<div class="max-w-md mx-auto bg-white shadow rounded-lg p-6">
    <h1 class="text-2xl font-bold mb-4">Login</h1>
    <form method="post" action="/login" class="space-y-4">
        <div>
            <label for="email" class="block text-sm font-medium">Email</label>
            <input id="email" name="email" type="email" value="{{with .Form}}{{.Email}}{{end}}" ` + inputClass + `>
            {{template "field-error" (.Errors.Get "email")}}
        </div>
        <div>
            <label for="password" class="block text-sm font-medium">Password</label>
            <input id="password" name="password" type="password" ` + inputClass + `>
            {{template "field-error" (.Errors.Get "password")}}
        </div>
        <button type="submit" ` + buttonClass + `>Login</button>
    </form>
    <p class="mt-4 text-sm"><a href="/forgot-password" class="text-indigo-600">Forgot password?</a></p>
    <p class="text-sm">No account yet? <a href="/signup" class="text-indigo-600">Sign up</a></p>
</div>
{{end}}`,

	"forgot-password": `{{define "content"}}
<div class="max-w-md mx-auto bg-white shadow rounded-lg p-6">
    <h1 class="text-2xl font-bold mb-4">Forgot Password</h1>
    <form method="post" action="/forgot-password" class="space-y-4">
        <div>
            <label for="email" class="block text-sm font-medium">Email</label>
            <input id="email" name="email" type="email" value="{{.Email}}" ` + inputClass + `>
            {{template "field-error" (.Errors.Get "email")}}
        </div>
        <button type="submit" ` + buttonClass + `>Send Reset Code</button>
    </form>
</div>
{{end}}`,

	"update-password": `{{define "content"}}
<div class="max-w-md mx-auto bg-white shadow rounded-lg p-6">
    <h1 class="text-2xl font-bold mb-4">Update Password</h1>
    <form method="post" action="/update-password" class="space-y-4">
        <div>
            <label for="newPassword" class="block text-sm font-medium">New Password</label>
            <input id="newPassword" name="newPassword" type="password" ` + inputClass + `>
            {{template "field-error" (.Errors.Get "newPassword")}}
        </div>
        <div>
            <label for="confirmPassword" class="block text-sm font-medium">Confirm Password</label>
            <input id="confirmPassword" name="confirmPassword" type="password" ` + inputClass + `>
            {{template "field-error" (.Errors.Get "confirmPassword")}}
        </div>
        <button type="submit" ` + buttonClass + `>Update Password</button>
    </form>
</div>
{{end}}`,

	"home": `{{define "content"}}
{{$view := .View}}
<div class="bg-white shadow rounded-lg p-6 mb-6">
    <h1 class="text-2xl font-bold mb-4">Find Local Businesses</h1>
    <form method="post" action="/" class="grid grid-cols-1 sm:grid-cols-3 gap-4 items-end">
        <div>
            <label for="location" class="block text-sm font-medium">Location</label>
            <input id="location" name="location" value="{{$view.Location}}" placeholder="e.g. Downtown" ` + inputClass + `>
            {{template "field-error" (.Errors.Get "location")}}
        </div>
        <div>
            <label for="type" class="block text-sm font-medium">Business Type</label>
            <input id="type" name="type" list="popular-types" value="{{$view.Type}}" placeholder="e.g. Cafe" ` + inputClass + `>
            <datalist id="popular-types">{{range $view.PopularTypes}}<option value="{{.}}">{{end}}</datalist>
            {{template "field-error" (.Errors.Get "type")}}
        </div>
        <button type="submit" ` + buttonClass + `>Search</button>
    </form>
</div>
{{if $view.Searched}}
    {{if $view.Results}}
    <ul class="space-y-3">
        {{range $view.Results}}
        <li class="bg-white shadow rounded-lg p-4 flex justify-between items-center">
            <div>
                <a href="/business/{{.PlaceID}}" class="text-lg font-semibold text-indigo-700">{{.Name}}</a>
                {{if .Claimed}}<span class="ml-2 rounded bg-green-100 px-2 py-0.5 text-xs text-green-800">Claimed</span>{{end}}
                <p class="text-sm text-gray-600">{{.Address}}</p>
                {{if .Category}}<p class="text-xs text-gray-500">{{.Category}}</p>{{end}}
            </div>
            {{if $view.CanClaim .}}<a href="/business/{{.PlaceID}}?claim=1" class="text-sm text-indigo-600">Claim this business</a>{{end}}
        </li>
        {{end}}
    </ul>
    {{else}}
    <p class="text-gray-500">No businesses found.</p>
    {{end}}
{{else}}
<div class="text-sm text-gray-600">
    Popular types:
    {{range $view.PopularTypes}}<span class="mr-2 inline-block rounded bg-gray-100 px-2 py-0.5">{{.}}</span>{{end}}
</div>
{{end}}
{{end}}`,

	"business": `{{define "content"}}
{{$view := .View}}
{{with $view.Business}}
<div class="bg-white shadow rounded-lg p-6 mb-6">
    <h1 class="text-2xl font-bold">{{.Name}}</h1>
    {{if .Category}}<p class="text-sm text-gray-500">{{.Category}}</p>{{end}}
    <dl class="mt-4 grid grid-cols-1 sm:grid-cols-2 gap-2 text-sm">
        {{if .Address}}<div><dt class="font-medium">Address</dt><dd>{{.Address}}</dd></div>{{end}}
        {{if .Phone}}<div><dt class="font-medium">Phone</dt><dd>{{.Phone}}</dd></div>{{end}}
        {{if .Website}}<div><dt class="font-medium">Website</dt><dd><a href="{{.Website}}" class="text-indigo-600" rel="noopener">{{.Website}}</a></dd></div>{{end}}
        {{if .Hours}}<div><dt class="font-medium">Hours</dt><dd>{{.Hours}}</dd></div>{{end}}
        {{if .Rating}}<div><dt class="font-medium">Rating</dt><dd>{{printf "%.1f" .Rating}}</dd></div>{{end}}
    </dl>
    {{if .Description}}<p class="mt-4 text-gray-700">{{.Description}}</p>{{end}}
    <div class="mt-4 flex space-x-4 text-sm">
        {{if $view.DirectionsURL}}<a href="{{$view.DirectionsURL}}" target="_blank" rel="noopener" class="text-indigo-600">Get Directions</a>{{end}}
        {{if $view.ShowDashboard}}<a href="/owner" class="text-indigo-600">Manage this business</a>{{end}}
        {{if and $view.CanClaim (not $.Claim)}}<a href="/business/{{.PlaceID}}?claim=1" class="text-indigo-600">Claim this business</a>{{end}}
    </div>
</div>

{{with $.Claim}}
<div id="claim" class="bg-white shadow rounded-lg p-6 mb-6">
    <h2 class="text-lg font-semibold mb-2">Claim {{$view.Business.Name}}</h2>
    <p class="text-sm text-gray-500 mb-4">Step {{.Number}} of 3</p>
    <form method="post" action="/business/{{$view.Business.PlaceID}}" class="space-y-4">
        <input type="hidden" name="action" value="claim">
        <input type="hidden" name="step" value="{{.Step}}">
        {{if eq .Step "email"}}
        <div>
            <label for="businessEmail" class="block text-sm font-medium">Business Email</label>
            <input id="businessEmail" name="businessEmail" type="email" ` + inputClass + `>
            {{template "field-error" ($.Errors.Get "businessEmail")}}
        </div>
        <button type="submit" ` + buttonClass + `>Send Code</button>
        {{else if eq .Step "otp"}}
        <input type="hidden" name="email" value="{{.Email}}">
        <div>
            <label for="otp" class="block text-sm font-medium">Code sent to {{.Email}}</label>
            <input id="otp" name="otp" inputmode="numeric" maxlength="6" ` + inputClass + `>
            {{template "field-error" ($.Errors.Get "otp")}}
        </div>
        <button type="submit" ` + buttonClass + `>Verify</button>
        <button type="submit" name="back" value="1" class="text-sm text-gray-600">Back</button>
        {{else}}
        <div>
            <label for="description" class="block text-sm font-medium">Description</label>
            <textarea id="description" name="description" ` + inputClass + `>{{.Details.Description}}</textarea>
        </div>
        <div>
            <label for="phone" class="block text-sm font-medium">Phone</label>
            <input id="phone" name="phone" value="{{.Details.Phone}}" ` + inputClass + `>
        </div>
        <div>
            <label for="website" class="block text-sm font-medium">Website</label>
            <input id="website" name="website" value="{{.Details.Website}}" ` + inputClass + `>
        </div>
        <div>
            <label for="hours" class="block text-sm font-medium">Hours</label>
            <input id="hours" name="hours" value="{{.Details.Hours}}" ` + inputClass + `>
        </div>
        <button type="submit" ` + buttonClass + `>Complete Claim</button>
        {{end}}
    </form>
</div>
{{end}}

{{if .Claimed}}
    {{if $view.Announcements}}
    <section class="mb-6">
        <h2 class="text-lg font-semibold mb-2">Announcements</h2>
        {{range $view.Announcements}}
        <div class="bg-white shadow rounded-lg p-4 mb-2">
            <h3 class="font-medium">{{.Title}}</h3>
            <p class="text-sm text-gray-700">{{.Message}}</p>
            {{with ago .Posted}}<p class="text-xs text-gray-400">{{.}}</p>{{end}}
        </div>
        {{end}}
    </section>
    {{end}}

    {{if $.Offers}}
    <section class="mb-6">
        <h2 class="text-lg font-semibold mb-2">Offers</h2>
        {{range $.Offers}}
        <div class="bg-white shadow rounded-lg p-4 mb-2">
            <h3 class="font-medium">{{.Title}}</h3>
            <p class="text-sm text-gray-700">{{.Description}}</p>
            <p class="text-xs text-gray-500">{{validity .}}</p>
        </div>
        {{end}}
    </section>
    {{end}}

    {{if $view.Items}}
    <section class="mb-6">
        <h2 class="text-lg font-semibold mb-2">Items</h2>
        <ul class="bg-white shadow rounded-lg divide-y">
            {{range $view.Items}}
            <li class="p-3 flex justify-between text-sm">
                <span>{{.Name}}</span>
                <span>{{price .Price}} {{if not .Available}}<span class="text-red-600">(Out of stock)</span>{{end}}</span>
            </li>
            {{end}}
        </ul>
    </section>
    {{end}}

    {{if $view.Polls}}
    <section class="mb-6">
        <h2 class="text-lg font-semibold mb-2">Polls</h2>
        {{range $view.Polls}}{{template "poll" .}}{{end}}
    </section>
    {{end}}
{{end}}
{{end}}
{{end}}`,

	"components/poll": `{{define "poll"}}
<div class="bg-white shadow rounded-lg p-4 mb-2">
    <h3 class="font-medium">{{.Poll.Question}}</h3>
    <p class="text-xs text-gray-500">{{votes .Total}}{{if not .Poll.IsActive}} &middot; Ended{{end}}</p>
    {{if .ShowResults}}
    <ul class="mt-2 space-y-1 text-sm">
        {{$pv := .}}
        {{range $i, $o := .Poll.Options}}
        <li>
            <div class="flex justify-between"><span>{{$o.Text}}</span><span>{{pct $pv $i}}% ({{votes $o.Votes}})</span></div>
            <div class="h-2 rounded bg-gray-200"><div class="h-2 rounded bg-indigo-500" style="width: {{pct $pv $i}}%"></div></div>
        </li>
        {{end}}
    </ul>
    {{if .HasVoted}}<p class="mt-2 text-xs text-gray-500">You voted on this poll.</p>{{end}}
    {{else if .CanVote}}
    <form method="post" action="/business/{{.Poll.PlaceID}}" class="mt-2 space-y-1 text-sm">
        <input type="hidden" name="action" value="vote">
        <input type="hidden" name="poll" value="{{.Poll.ID}}">
        {{range $i, $o := .Poll.Options}}
        <label class="block"><input type="radio" name="option" value="{{$i}}"> {{$o.Text}}</label>
        {{end}}
        <button type="submit" ` + buttonClass + `>Vote</button>
    </form>
    {{else}}
    <ul class="mt-2 list-disc pl-5 text-sm">{{range .Poll.Options}}<li>{{.Text}}</li>{{end}}</ul>
    {{end}}
</div>
{{end}}`,

	"owner": `{{define "content"}}
<h1 class="text-2xl font-bold mb-4">Welcome, {{with .View.User}}{{.DisplayName}}{{end}}</h1>
{{if .View.Businesses}}
<ul class="space-y-3">
    {{range .View.Businesses}}
    <li class="bg-white shadow rounded-lg p-4">
        <a href="/business/{{.PlaceID}}" class="text-lg font-semibold text-indigo-700">{{.Name}}</a>
        <p class="text-sm text-gray-600">{{.Address}}</p>
        <div class="mt-2 flex space-x-4 text-sm">
            <a href="/owner/{{.PlaceID}}/items" class="text-indigo-600">Items</a>
            <a href="/owner/{{.PlaceID}}/offers" class="text-indigo-600">Offers</a>
            <a href="/owner/{{.PlaceID}}/polls" class="text-indigo-600">Polls</a>
            <a href="/owner/{{.PlaceID}}/announcements" class="text-indigo-600">Announcements</a>
        </div>
    </li>
    {{end}}
</ul>
{{else}}
<p class="text-gray-500">You have not claimed any businesses yet. <a href="/" class="text-indigo-600">Search for yours</a> to claim it.</p>
{{end}}
{{end}}`,

	"components/owner-tabs": `{{define "owner-tabs"}}
<div class="mb-4 flex space-x-4 text-sm">
    <a href="/owner" class="text-gray-600">&larr; Dashboard</a>
    <a href="/owner/{{.}}/items" class="text-indigo-600">Items</a>
    <a href="/owner/{{.}}/offers" class="text-indigo-600">Offers</a>
    <a href="/owner/{{.}}/polls" class="text-indigo-600">Polls</a>
    <a href="/owner/{{.}}/announcements" class="text-indigo-600">Announcements</a>
</div>
{{end}}`,

	"components/delete-button": `{{define "delete-button"}}
<form method="post" class="inline">
    <input type="hidden" name="action" value="delete">
    <input type="hidden" name="id" value="{{.}}">
    <button type="submit" class="text-sm text-red-600">Delete</button>
</form>
{{end}}`,

	"items": `{{define "content"}}
{{template "owner-tabs" .PlaceID}}
<h1 class="text-2xl font-bold mb-4">{{.Title}}</h1>
<form method="post" class="bg-white shadow rounded-lg p-4 mb-6 grid grid-cols-1 sm:grid-cols-4 gap-4 items-end">
    <input type="hidden" name="action" value="add">
    <div>
        <label for="name" class="block text-sm font-medium">Name</label>
        <input id="name" name="name" value="{{.Form.Name}}" ` + inputClass + `>
        {{template "field-error" (.Errors.Get "name")}}
    </div>
    <div>
        <label for="price" class="block text-sm font-medium">Price</label>
        <input id="price" name="price" inputmode="decimal" value="{{.Form.Price}}" ` + inputClass + `>
        {{template "field-error" (.Errors.Get "price")}}
    </div>
    <label class="text-sm"><input type="checkbox" name="available" value="1" {{if .Form.Available}}checked{{end}}> Available</label>
    <button type="submit" ` + buttonClass + `>Add Item</button>
</form>
{{if .View.Entries}}
<ul class="bg-white shadow rounded-lg divide-y">
    {{range .View.Entries}}
    <li class="p-3 flex justify-between items-center text-sm">
        <span>{{.Name}} &middot; {{price .Price}}</span>
        <span class="flex space-x-4">
            <form method="post" class="inline">
                <input type="hidden" name="action" value="availability">
                <input type="hidden" name="id" value="{{.ID}}">
                {{if .Available}}
                <input type="hidden" name="available" value="false">
                <button type="submit" class="text-sm text-gray-600">Mark out of stock</button>
                {{else}}
                <input type="hidden" name="available" value="true">
                <button type="submit" class="text-sm text-gray-600">Mark available</button>
                {{end}}
            </form>
            {{template "delete-button" .ID}}
        </span>
    </li>
    {{end}}
</ul>
{{else}}
<p class="text-gray-500">No items yet.</p>
{{end}}
{{end}}`,

	"offers": `{{define "content"}}
{{template "owner-tabs" .PlaceID}}
<h1 class="text-2xl font-bold mb-4">{{.Title}}</h1>
<form method="post" class="bg-white shadow rounded-lg p-4 mb-6 space-y-4">
    <input type="hidden" name="action" value="add">
    <div>
        <label for="title" class="block text-sm font-medium">Title</label>
        <input id="title" name="title" value="{{.Form.Title}}" ` + inputClass + `>
        {{template "field-error" (.Errors.Get "title")}}
    </div>
    <div>
        <label for="description" class="block text-sm font-medium">Description</label>
        <textarea id="description" name="description" ` + inputClass + `>{{.Form.Description}}</textarea>
        {{template "field-error" (.Errors.Get "description")}}
    </div>
    <div>
        <label for="validTill" class="block text-sm font-medium">Valid Till</label>
        <input id="validTill" name="validTill" type="date" value="{{.Form.ValidTill}}" ` + inputClass + `>
        {{template "field-error" (.Errors.Get "validTill")}}
    </div>
    <button type="submit" ` + buttonClass + `>Create Offer</button>
</form>
{{if .View.Entries}}
<ul class="bg-white shadow rounded-lg divide-y">
    {{range .View.Entries}}
    <li class="p-3 flex justify-between items-center text-sm">
        <span><strong>{{.Title}}</strong> &middot; {{.Description}} &middot; {{validity .}}</span>
        {{template "delete-button" .ID}}
    </li>
    {{end}}
</ul>
{{else}}
<p class="text-gray-500">No offers yet.</p>
{{end}}
{{end}}`,

	"polls": `{{define "content"}}
{{template "owner-tabs" .PlaceID}}
<h1 class="text-2xl font-bold mb-4">{{.Title}}</h1>
<form method="post" class="bg-white shadow rounded-lg p-4 mb-6 space-y-4">
    <input type="hidden" name="action" value="add">
    <div>
        <label for="question" class="block text-sm font-medium">Question</label>
        <input id="question" name="question" value="{{.Form.Question}}" ` + inputClass + `>
        {{template "field-error" (.Errors.Get "question")}}
    </div>
    {{range $i, $o := .Form.Options}}
    <div>
        <label class="block text-sm font-medium">Option {{add $i 1}}</label>
        <input name="options" value="{{$o}}" ` + inputClass + `>
    </div>
    {{end}}
    <div>
        <label class="block text-sm font-medium">Another option (optional)</label>
        <input name="options" ` + inputClass + `>
    </div>
    {{template "field-error" (.Errors.Get "options")}}
    <button type="submit" ` + buttonClass + `>Create Poll</button>
</form>
{{if .View.Entries}}
    {{range .View.Entries}}
    <div class="mb-2">
        {{template "poll" (ownerPoll .)}}
        <div class="flex space-x-4">
            {{if .IsActive}}
            <form method="post" class="inline">
                <input type="hidden" name="action" value="end">
                <input type="hidden" name="id" value="{{.ID}}">
                <button type="submit" class="text-sm text-gray-600">End Poll</button>
            </form>
            {{end}}
            {{template "delete-button" .ID}}
        </div>
    </div>
    {{end}}
{{else}}
<p class="text-gray-500">No polls yet.</p>
{{end}}
{{end}}`,

	"announcements": `{{define "content"}}
{{template "owner-tabs" .PlaceID}}
<h1 class="text-2xl font-bold mb-4">{{.Title}}</h1>
<form method="post" class="bg-white shadow rounded-lg p-4 mb-6 space-y-4">
    <input type="hidden" name="action" value="add">
    <div>
        <label for="title" class="block text-sm font-medium">Title</label>
        <input id="title" name="title" value="{{.Form.Title}}" ` + inputClass + `>
        {{template "field-error" (.Errors.Get "title")}}
    </div>
    <div>
        <label for="message" class="block text-sm font-medium">Message</label>
        <textarea id="message" name="message" ` + inputClass + `>{{.Form.Message}}</textarea>
        {{template "field-error" (.Errors.Get "message")}}
    </div>
    <button type="submit" ` + buttonClass + `>Post Announcement</button>
</form>
{{if .View.Entries}}
<ul class="bg-white shadow rounded-lg divide-y">
    {{range .View.Entries}}
    <li class="p-3 flex justify-between items-center text-sm">
        <span><strong>{{.Title}}</strong> &middot; {{.Message}}{{with ago .Posted}} &middot; {{.}}{{end}}</span>
        {{template "delete-button" .ID}}
    </li>
    {{end}}
</ul>
{{else}}
<p class="text-gray-500">No announcements yet.</p>
{{end}}
{{end}}`,
}
