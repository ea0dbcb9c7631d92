package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

type Template string

const (
	TemplateWelcome          Template = "welcome"
	TemplatePasswordReset    Template = "password_reset"
	TemplatePaymentConfirmed Template = "payment_confirmed"
	TemplateSongApproved     Template = "song_approved"
	TemplateSongRejected     Template = "song_rejected"
	TemplateWinner           Template = "winner"
)

const layout = `<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;background:#0f0f14;color:#f4f4f5;padding:24px">
<div style="max-width:560px;margin:0 auto;background:#18181f;border-radius:12px;padding:32px">
<h1 style="color:#a855f7;margin-top:0">SoundWars</h1>
{{template "body" .}}
<p style="color:#71717a;font-size:12px;margin-top:32px">You are receiving this because you have a SoundWars account.</p>
</div></body></html>`

var bodies = map[Template]struct {
	subject string
	body    string
}{
	TemplateWelcome: {"Welcome to SoundWars", `{{define "body"}}
<p>Hi {{.Username}},</p>
<p>Your account is ready.{{if .IsArtist}} Complete your artist registration payment to submit songs to the monthly contest.{{else}} Listen to this month's entries and cast your vote.{{end}}</p>
<p><a href="{{.FrontendURL}}" style="color:#a855f7">Open SoundWars</a></p>{{end}}`},
	TemplatePasswordReset: {"Reset your SoundWars password", `{{define "body"}}
<p>Hi {{.Username}},</p>
<p>Someone asked to reset your password. The link below is valid for one hour.</p>
<p><a href="{{.ResetURL}}" style="color:#a855f7">Reset password</a></p>
<p>If you did not request this, ignore this email.</p>{{end}}`},
	TemplatePaymentConfirmed: {"Payment confirmed", `{{define "body"}}
<p>Hi {{.Username}},</p>
<p>We received your artist registration payment (ref {{.TxRef}}). You can now submit a song to the current contest.</p>{{end}}`},
	TemplateSongApproved: {"Your song is live", `{{define "body"}}
<p>Hi {{.StageName}},</p>
<p>"{{.SongTitle}}" was approved and is now open for votes.</p>{{end}}`},
	TemplateSongRejected: {"Your submission was not approved", `{{define "body"}}
<p>Hi {{.StageName}},</p>
<p>"{{.SongTitle}}" was not approved. Reason: {{.Reason}}</p>{{end}}`},
	TemplateWinner: {"You won SoundWars!", `{{define "body"}}
<p>Congratulations {{.StageName}}!</p>
<p>"{{.SongTitle}}" won {{.ContestTitle}} with {{.Votes}} votes.</p>{{end}}`},
}

var templates = func() map[Template]*template.Template {
	out := make(map[Template]*template.Template, len(bodies))
	for name, b := range bodies {
		t := template.Must(template.New(string(name)).Parse(layout))
		out[name] = template.Must(t.Parse(b.body))
	}
	return out
}()

// Render returns the subject and HTML body for a template.
func Render(name Template, data map[string]interface{}) (string, string, error) {
	t, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return bodies[name].subject, buf.String(), nil
}
