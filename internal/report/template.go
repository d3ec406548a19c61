package report

// htmlTemplate renders Data as a single self-contained page.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #1f2937;
         background: #faf5ff; max-width: 760px; margin: 0 auto; padding: 24px; }
  header { border-bottom: 3px solid #9333ea; margin-bottom: 16px; padding-bottom: 8px; }
  header h1 { color: #7e22ce; margin: 0 0 4px; font-size: 1.5rem; }
  .muted { color: #6b7280; font-size: 0.85rem; }
  section { background: #fff; border-radius: 12px; padding: 16px 20px; margin: 16px 0;
            box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
  section h2 { font-size: 1.1rem; margin: 0 0 10px; color: #581c87; }
  table { width: 100%; border-collapse: collapse; }
  td { padding: 4px 0; border-bottom: 1px solid #f3e8ff; }
  td.value { text-align: right; font-weight: 600; }
  .chart { margin-top: 12px; text-align: center; }
  footer { margin-top: 24px; font-size: 0.8rem; color: #6b7280; text-align: center; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <div class="muted">Generated {{.GeneratedAt}} · {{.Author}}</div>
</header>
{{range .Sections}}
<section id="{{.Key}}">
  <h2>{{.Title}}</h2>
  <table>
  {{range .Rows}}<tr><td>{{.Label}}</td><td class="value">{{.Value}}</td></tr>
  {{end}}
  </table>
  {{if .Chart}}<div class="chart">{{.Chart}}</div>{{end}}
</section>
{{else}}
<p class="muted">Nothing to report.</p>
{{end}}
<footer>For education only. Not financial advice.</footer>
</body>
</html>
`
