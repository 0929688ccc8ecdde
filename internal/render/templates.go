package render

const treemapTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="Content-Security-Policy" content="default-src 'none'; style-src 'unsafe-inline'; script-src 'unsafe-inline';">
<title>{{.Title}}</title>
<style>
  body { margin: 0; padding: 12px; font-family: -apple-system, "Segoe UI", sans-serif; font-size: 12px; background: #1e1e1e; color: #ddd; }
  header { display: flex; justify-content: space-between; align-items: baseline; margin-bottom: 8px; }
  header h1 { font-size: 14px; margin: 0; }
  #status { min-height: 16px; margin-bottom: 6px; color: #aaa; }
  #map { position: relative; overflow: hidden; }
  .cell { position: absolute; box-sizing: border-box; border: 1px solid rgba(0, 0, 0, 0.35); overflow: hidden; cursor: pointer; }
  .cell.file { border-left-width: 4px; }
  .cell.folder { background: transparent; border: 2px solid; pointer-events: none; z-index: 2; }
  .cell.folder span { display: inline-block; max-width: 100%; box-sizing: border-box; background: var(--fill); }
  .cell.file:hover { outline: 2px solid #fff; z-index: 1; }
  .cell span { display: block; padding: 1px 3px; white-space: nowrap; text-overflow: ellipsis; overflow: hidden; pointer-events: none; }
  .legend { display: flex; flex-wrap: wrap; gap: 12px; margin-top: 8px; }
  .legend i { display: inline-block; width: 10px; height: 10px; margin-right: 4px; vertical-align: middle; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <div>{{.TotalLabel}} lines</div>
</header>
<div id="status">Click a file to open it, alt-click to reveal its folder.</div>
<div id="map" style="{{.MapStyle}}">
{{- range .Cells}}
  <div class="cell {{.Kind}}" style="{{.Style}}" title="{{.Path}} ({{.Label}} lines)" data-event="{{.EventJSON}}" data-parent-event="{{.ParentEventJSON}}">{{if .ShowLabel}}<span>{{.Name}} {{.Label}}</span>{{end}}</div>
{{- end}}
</div>
{{- if .Legend}}
<div class="legend">
{{- range .Legend}}
  <div><i style="{{.Swatch}}"></i>{{.Language}} ({{.Label}})</div>
{{- end}}
</div>
{{- end}}
<script>
(function () {
  var host = typeof acquireVsCodeApi === "function" ? acquireVsCodeApi() : null;
  function send(msg) {
    if (host) {
      host.postMessage(msg);
    } else if (window.parent && window.parent !== window) {
      window.parent.postMessage(msg, "*");
    } else {
      console.log(JSON.stringify(msg));
    }
  }
  var status = document.getElementById("status");
  var cells = document.querySelectorAll(".cell");
  for (var i = 0; i < cells.length; i++) {
    cells[i].addEventListener("click", function (ev) {
      ev.stopPropagation();
      var data = ev.altKey && this.dataset.parentEvent ? this.dataset.parentEvent : this.dataset.event;
      send(JSON.parse(data));
    });
    cells[i].addEventListener("mouseenter", function () {
      status.textContent = this.title;
    });
  }
})();
</script>
</body>
</html>
`
