package mail

import "html/template"

type confirmationData struct {
	ConfirmURL string
	Email      string
}

type surveyData struct {
	SurveyURL string
	Email     string
}

type announcementData struct {
	Title          string
	Intro          string
	Body           string
	LinkURL        string
	LinkText       string
	Email          string
	UnsubscribeURL string
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Confirm Your FACILITAIR Beta Subscription</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #100F0D; color: #FAFAFA;">
    <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #100F0D; padding: 40px 20px;">
        <tr>
            <td align="center">
                <table width="600" cellpadding="0" cellspacing="0" style="max-width: 600px; background-color: #1A1916; border: 1px solid rgba(92, 225, 230, 0.2); border-radius: 12px; overflow: hidden;">
                    <tr>
                        <td style="background: linear-gradient(135deg, rgba(92, 225, 230, 0.1) 0%, rgba(92, 225, 230, 0.05) 100%); padding: 40px 30px; text-align: center; border-bottom: 1px solid rgba(92, 225, 230, 0.2);">
                            <h1 style="margin: 0; color: #5CE1E6; font-size: 32px; font-weight: 700; letter-spacing: -0.5px;">FACILITAIR</h1>
                            <p style="margin: 10px 0 0 0; color: rgba(250, 250, 250, 0.7); font-size: 14px;">Multi-Agent AI Collaboration Platform</p>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 40px 30px;">
                            <h2 style="margin: 0 0 20px 0; color: #FAFAFA; font-size: 24px; font-weight: 600;">Confirm Your Beta Access</h2>
                            <p style="margin: 0 0 20px 0; color: rgba(250, 250, 250, 0.8); font-size: 16px; line-height: 1.6;">
                                Thank you for your interest in FACILITAIR! We're excited to have you join us on this journey to revolutionize AI collaboration.
                            </p>
                            <p style="margin: 0 0 30px 0; color: rgba(250, 250, 250, 0.8); font-size: 16px; line-height: 1.6;">
                                Click the button below to confirm your email address and secure your spot on our beta waitlist:
                            </p>
                            <table width="100%" cellpadding="0" cellspacing="0">
                                <tr>
                                    <td align="center" style="padding: 20px 0;">
                                        <a href="{{.ConfirmURL}}" style="display: inline-block; background: linear-gradient(135deg, #5CE1E6 0%, #4BA9AE 100%); color: #100F0D; text-decoration: none; padding: 16px 40px; border-radius: 8px; font-weight: 600; font-size: 16px;">
                                            Confirm Email Address
                                        </a>
                                    </td>
                                </tr>
                            </table>
                            <p style="margin: 30px 0 0 0; color: rgba(250, 250, 250, 0.6); font-size: 14px; line-height: 1.6;">
                                Or copy and paste this link into your browser:<br>
                                <a href="{{.ConfirmURL}}" style="color: #5CE1E6; word-break: break-all;">{{.ConfirmURL}}</a>
                            </p>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 30px; background-color: rgba(0, 0, 0, 0.3); border-top: 1px solid rgba(92, 225, 230, 0.1); text-align: center;">
                            <p style="margin: 0 0 10px 0; color: rgba(250, 250, 250, 0.5); font-size: 12px;">
                                This confirmation was requested for {{.Email}}
                            </p>
                            <p style="margin: 0 0 10px 0; color: rgba(250, 250, 250, 0.5); font-size: 12px;">
                                If you didn't request this, you can safely ignore this email.
                            </p>
                            <p style="margin: 0; color: rgba(250, 250, 250, 0.5); font-size: 12px;">
                                This is an automated email. Please do not reply. For questions, contact us via <a href="https://facilitair.ai" style="color: #5CE1E6; text-decoration: none;">facilitair.ai</a>
                            </p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`))

var surveyTmpl = template.Must(template.New("survey").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Welcome to FACILITAIR - Share Your Story</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #100F0D; color: #FAFAFA;">
    <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #100F0D; padding: 40px 20px;">
        <tr>
            <td align="center">
                <table width="600" cellpadding="0" cellspacing="0" style="max-width: 600px; background-color: #1A1916; border: 1px solid rgba(92, 225, 230, 0.2); border-radius: 12px; overflow: hidden;">
                    <tr>
                        <td style="background: linear-gradient(135deg, rgba(92, 225, 230, 0.1) 0%, rgba(92, 225, 230, 0.05) 100%); padding: 40px 30px; text-align: center; border-bottom: 1px solid rgba(92, 225, 230, 0.2);">
                            <h1 style="margin: 0; color: #5CE1E6; font-size: 32px; font-weight: 700; letter-spacing: -0.5px;">Welcome to FACILITAIR!</h1>
                            <p style="margin: 10px 0 0 0; color: rgba(250, 250, 250, 0.7); font-size: 14px;">You're officially on the beta waitlist</p>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 40px 30px;">
                            <h2 style="margin: 0 0 20px 0; color: #FAFAFA; font-size: 24px; font-weight: 600;">Thank You for Joining the Journey</h2>
                            <p style="margin: 0 0 20px 0; color: rgba(250, 250, 250, 0.8); font-size: 16px; line-height: 1.6;">
                                Your email has been confirmed! You're now part of an exclusive group shaping the future of multi-agent AI collaboration.
                            </p>
                            <p style="margin: 0 0 20px 0; color: rgba(250, 250, 250, 0.8); font-size: 16px; line-height: 1.6;">
                                <strong style="color: #5CE1E6;">Help us build FACILITAIR for you.</strong> We'd love to learn more about your use case and how we can tailor the beta experience to your needs.
                            </p>
                            <p style="margin: 0 0 30px 0; color: rgba(250, 250, 250, 0.8); font-size: 16px; line-height: 1.6;">
                                Take 2 minutes to share your story:
                            </p>
                            <table width="100%" cellpadding="0" cellspacing="0">
                                <tr>
                                    <td align="center" style="padding: 20px 0;">
                                        <a href="{{.SurveyURL}}" style="display: inline-block; background: linear-gradient(135deg, #5CE1E6 0%, #4BA9AE 100%); color: #100F0D; text-decoration: none; padding: 16px 40px; border-radius: 8px; font-weight: 600; font-size: 16px;">
                                            Complete Survey (2 min)
                                        </a>
                                    </td>
                                </tr>
                            </table>
                            <p style="margin: 30px 0 0 0; color: rgba(250, 250, 250, 0.7); font-size: 14px; line-height: 1.6; font-style: italic;">
                                Your input directly influences our development roadmap. All responses are optional, but highly valued!
                            </p>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 30px; background-color: rgba(0, 0, 0, 0.3); border-top: 1px solid rgba(92, 225, 230, 0.1); text-align: center;">
                            <p style="margin: 0 0 10px 0; color: rgba(250, 250, 250, 0.5); font-size: 12px;">
                                Sent to {{.Email}}
                            </p>
                            <p style="margin: 0; color: rgba(250, 250, 250, 0.5); font-size: 12px;">
                                This is an automated email. Please do not reply. For questions, contact us via <a href="https://facilitair.ai" style="color: #5CE1E6; text-decoration: none;">facilitair.ai</a>
                            </p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`))

var announcementTmpl = template.Must(template.New("announcement").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #100F0D; color: #FAFAFA;">
    <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #100F0D; padding: 40px 20px;">
        <tr>
            <td align="center">
                <table width="600" cellpadding="0" cellspacing="0" style="max-width: 600px; background-color: #1A1916; border: 1px solid rgba(92, 225, 230, 0.2); border-radius: 12px; overflow: hidden;">
                    <tr>
                        <td style="background: linear-gradient(135deg, rgba(92, 225, 230, 0.1) 0%, rgba(92, 225, 230, 0.05) 100%); padding: 40px 30px; text-align: center; border-bottom: 1px solid rgba(92, 225, 230, 0.2);">
                            <h1 style="margin: 0; color: #5CE1E6; font-size: 32px; font-weight: 700; letter-spacing: -0.5px;">FACILITAIR</h1>
                            <p style="margin: 10px 0 0 0; color: rgba(250, 250, 250, 0.7); font-size: 14px;">Weekly Updates &amp; AI Research</p>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 40px 30px;">
                            <p style="margin: 0 0 20px 0; color: rgba(250, 250, 250, 0.9); font-size: 16px; line-height: 1.6;">
                                {{.Intro}}
                            </p>
                            <table width="100%" cellpadding="0" cellspacing="0" style="margin: 30px 0; background: rgba(92, 225, 230, 0.05); border: 1px solid rgba(92, 225, 230, 0.2); border-radius: 8px; overflow: hidden;">
                                <tr>
                                    <td style="padding: 20px;">
                                        <h2 style="margin: 0 0 10px 0; color: #5CE1E6; font-size: 20px; font-weight: 600;">{{.Title}}</h2>
                                        <p style="margin: 0; color: rgba(250, 250, 250, 0.8); font-size: 15px; line-height: 1.6;">{{.Body}}</p>
                                    </td>
                                </tr>
                            </table>
                            {{if .LinkURL}}
                            <table width="100%" cellpadding="0" cellspacing="0">
                                <tr>
                                    <td align="center" style="padding: 10px 0 30px 0;">
                                        <a href="{{.LinkURL}}" style="display: inline-block; background: linear-gradient(135deg, #5CE1E6 0%, #4BA9AE 100%); color: #100F0D; text-decoration: none; padding: 16px 40px; border-radius: 8px; font-weight: 600; font-size: 16px;">
                                            {{.LinkText}}
                                        </a>
                                    </td>
                                </tr>
                            </table>
                            {{end}}
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 30px; background-color: rgba(0, 0, 0, 0.3); border-top: 1px solid rgba(92, 225, 230, 0.1); text-align: center;">
                            <p style="margin: 0 0 10px 0; color: rgba(250, 250, 250, 0.5); font-size: 12px;">
                                Sent to {{.Email}}
                            </p>
                            <p style="margin: 0; color: rgba(250, 250, 250, 0.5); font-size: 12px;">
                                <a href="{{.UnsubscribeURL}}" style="color: rgba(92, 225, 230, 0.7); text-decoration: underline;">Unsubscribe</a> &#8226;
                                <a href="https://facilitair.ai" style="color: rgba(92, 225, 230, 0.7); text-decoration: none;">facilitair.ai</a>
                            </p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`))
