package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/reaction-duel/internal/logic"
	"github.com/sweeney/reaction-duel/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"ms": func(d time.Duration) string {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	},
	"stateClass": func(s logic.State) string {
		switch s {
		case logic.StateArmed:
			return "armed"
		case logic.StateDone:
			return "done"
		case logic.StateCancelled:
			return "cancelled"
		}
		return "idle"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{if not .Finished}}<meta http-equiv="refresh" content="2">{{end}}
<title>Reaction Duel</title>
<style>
body { font-family: monospace; max-width: 700px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.armed { color: orange; font-weight: bold; }
.done { color: green; font-weight: bold; }
.cancelled { color: #888; }
.idle { color: inherit; }
.error { color: red; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Reaction Duel</h1>
<p>Game <code>{{.GameID}}</code>{{if .Finished}} (finished){{end}}</p>

<h2>Scoreboard</h2>
<table>
<tr><th>Player</th><th>State</th><th>Round</th><th>Last</th><th>Best</th><th>Average</th><th>Total</th></tr>
{{range .Players}}<tr>
<td>{{.Name}}</td>
<td class="{{if .Error}}error{{else}}{{stateClass .State}}{{end}}">{{if .Error}}FAILED{{else}}{{.State}}{{end}}</td>
<td>{{.Round}}/{{.Limit}}</td>
<td>{{ms .Last}}</td>
<td>{{ms .Best}}</td>
<td>{{ms .Average}}</td>
<td>{{ms .Total}}</td>
</tr>
{{if .Error}}<tr><td></td><td colspan="6" class="error">{{.Error}}</td></tr>{{end}}{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Rounds</th><td>{{.Config.Rounds}}</td></tr>
<tr><th>Stimulus delay</th><td>{{.Config.MinWaitMs}}ms to {{.Config.MaxWaitMs}}ms</td></tr>
<tr><th>Poll timeout</th><td>{{.Config.PollTimeoutMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{if eq .Config.DebounceMs 0}}off{{else}}{{.Config.DebounceMs}}ms{{end}}</td></tr>
<tr><th>Chip</th><td>{{.Config.Chip}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Uptime and Finished are methods; the template wants fields.
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		Finished bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Finished: snap.Finished(),
	}
	return indexTmpl.Execute(w, data)
}
