// Package view renders the Mirador viewer HTML page published alongside
// each manifest.
package view

import (
	"fmt"
	"text/template"
	"io"
)

// Page is everything the viewer template needs for one record.
type Page struct {
	Identifier  string
	Title       string
	ManifestURL string
	HandleURL   string
	// CanvasID is the canvas the viewer opens on, normally the first page.
	CanvasID string
	Location string
}

var pageTemplate = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html>
<head>
<script async src="https://www.googletagmanager.com/gtag/js?id=UA-3008279-23"></script>
<script src="/iiif/bc-mirador/gtag.js"></script>
<title>{{.Identifier}}</title>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" type="text/css" href="/iiif/build/mirador/css/mirador-combined.css"></link>
<link rel="stylesheet" type="text/css" href="/iiif/bc-mirador/mirador-bc.css"></link>
<link rel="stylesheet" type="text/css" href="/iiif/bc-mirador/slicknav.css"></link>
<script type="text/javascript" src="/iiif/build/mirador/mirador.js"></script>
<script type="text/javascript" src="/iiif/bc-mirador/jquery.slicknav.min.js"></script>
<script type="text/javascript" src="/iiif/bc-mirador/downloadMenu.js"></script>
</head>
<body>
<div id="viewer"></div>
<script type="text/javascript">
window.mdObj = {MIRADOR_DATA: [{"manifestUri": "{{.ManifestURL}}","location": "{{.Location}}","title":"{{.Title}}"}],MIRADOR_WOBJECTS: [{"canvasID": "{{.CanvasID}}","loadedManifest": "{{.ManifestURL}}","viewType": "ImageView"}],MIRADOR_BUTTONS: [{"label": "View Library Record","iconClass": "fa fa-external-link","attributes": {"class": "handle","href": "{{.HandleURL}}","target": "_blank"}}]};
</script>
<script type="text/javascript" src="/iiif/bc-mirador/bcViewer.js"></script>
</body>
</html>
`))

// Render writes the viewer page for one record.
func Render(w io.Writer, page Page) error {
	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("rendering view for %s: %w", page.Identifier, err)
	}
	return nil
}
