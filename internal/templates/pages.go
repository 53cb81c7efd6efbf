package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const pageStyle = `<style>
body{font-family:system-ui,sans-serif;background:#f5f5f7;display:flex;justify-content:center;padding-top:10vh;margin:0}
main{background:#fff;border-radius:12px;padding:2rem 2.5rem;box-shadow:0 2px 12px rgba(0,0,0,.08);max-width:420px;width:100%}
input{font-size:1.5rem;letter-spacing:.3rem;text-transform:uppercase;width:100%;padding:.5rem;box-sizing:border-box}
button{margin-top:1rem;width:100%;padding:.75rem;font-size:1rem;border:0;border-radius:8px;background:#111;color:#fff;cursor:pointer}
.error{color:#b00020}
</style>`

// layout wraps body in the shared page chrome.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		if err != nil {
			return err
		}
		if _, err = io.WriteString(w, templ.EscapeString(title)); err != nil {
			return err
		}
		if _, err = io.WriteString(w, ` · Pulse</title>`+pageStyle+`</head><body><main>`); err != nil {
			return err
		}
		if err = body.Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// VerifyPage renders the user-code entry form.
func VerifyPage(props VerifyPageProps) templ.Component {
	return layout("Connect your device", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<h1>Connect the Pulse CLI</h1><p>Enter the code shown in your terminal.</p>`)
		if err != nil {
			return err
		}
		if props.Error != "" {
			_, err = io.WriteString(w, `<p class="error">`+templ.EscapeString(props.Error)+`</p>`)
			if err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `<form method="get" action="/cli/auth/start-auth">`+
			`<input name="user_code" value="`+templ.EscapeString(props.UserCode)+`"`+
			` autocomplete="off" autofocus maxlength="9" required>`+
			`<button type="submit">Continue</button></form>`)
		return err
	}))
}

// SuccessPage renders the device-authorized confirmation.
func SuccessPage(props SuccessPageProps) templ.Component {
	return layout("Device connected", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<h1>Device connected</h1><p>`)
		if err != nil {
			return err
		}
		if props.Email != "" {
			_, err = io.WriteString(w, `Signed in as <strong>`+templ.EscapeString(props.Email)+`</strong>. `)
			if err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `You can close this window and return to your terminal.</p>`)
		return err
	}))
}

// ErrorPage renders a terminal error in the device flow.
func ErrorPage(props ErrorPageProps) templ.Component {
	return layout("Error", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<h1 class="error">`+templ.EscapeString(props.Error)+`</h1>`)
		if err != nil {
			return err
		}
		if props.Message != "" {
			_, err = io.WriteString(w, `<p>`+templ.EscapeString(props.Message)+`</p>`)
			if err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `<p><a href="/cli/auth/verify">Start over</a></p>`)
		return err
	}))
}
