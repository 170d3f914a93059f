package handler

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

type pageData struct {
	Title     string
	Heading   string
	Lines     []string
	CheckMark bool
}

// statusPageTmpl renders the small standalone pages returned by the
// confirm and unsubscribe links, styled like the marketing site.
var statusPageTmpl = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}} - FACILITAIR</title>
    <style>
        body {
            font-family: 'Montserrat', sans-serif;
            background: #100F0D;
            color: #FAFAFA;
            display: flex;
            align-items: center;
            justify-content: center;
            min-height: 100vh;
            margin: 0;
            padding: 20px;
        }
        .message {
            text-align: center;
            max-width: 500px;
            background: rgba(92, 225, 230, 0.05);
            padding: 40px;
            border-radius: 12px;
            border: 1px solid rgba(92, 225, 230, 0.2);
        }
        h1 { color: #5CE1E6; margin-bottom: 20px; }
        p {
            color: rgba(250, 250, 250, 0.8);
            line-height: 1.6;
            margin-bottom: 15px;
        }
        a { color: #5CE1E6; text-decoration: none; }
        .check-mark {
            font-size: 60px;
            color: #5CE1E6;
            margin-bottom: 20px;
        }
    </style>
</head>
<body>
    <div class="message">
        {{if .CheckMark}}<div class="check-mark">&#10003;</div>{{end}}
        <h1>{{.Heading}}</h1>
        {{range .Lines}}<p>{{.}}</p>
        {{end}}<p><a href="/">Return to homepage</a></p>
    </div>
</body>
</html>
`))

func writePage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := statusPageTmpl.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("failed to render status page")
	}
}
