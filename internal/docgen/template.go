package docgen

import "html/template"

var page = template.Must(template.New("doc").Parse(pageTemplate))

// pageTemplate is the whole standalone document. Costume thumbnails and
// sounds point at the Scratch CDN; the scratchblocks script draws the
// notation inside pre.blocks elements client-side.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}} - Scratch Project Documentation</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/scratchblocks@3.6.4/build/scratchblocks.min.css">
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
    font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
    background-color: #f5f5f5;
    display: flex;
}
.sidebar {
    width: 280px;
    background: white;
    padding: 20px;
    border-right: 2px solid #e0e0e0;
    position: sticky;
    top: 0;
    height: 100vh;
    overflow-y: auto;
    flex-shrink: 0;
}
.sidebar-title {
    font-size: 1.3em;
    font-weight: bold;
    color: #ff6680;
    margin-bottom: 20px;
    padding-bottom: 10px;
    border-bottom: 2px solid #ff6680;
}
.sidebar-nav { list-style: none; }
.sidebar-nav > li { margin-bottom: 5px; }
.sidebar-nav a {
    display: block;
    padding: 10px 15px;
    color: #333;
    text-decoration: none;
    border-radius: 6px;
    transition: all 0.3s ease;
    font-weight: 500;
}
.sidebar-nav a:hover {
    background: #f0f0f0;
    color: #ff6680;
    transform: translateX(5px);
}
.sidebar-nav a.active {
    background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
    color: white;
    box-shadow: 0 2px 8px rgba(102, 126, 234, 0.3);
}
.sidebar-nav .sprite-subnav {
    list-style: none;
    margin-top: 5px;
    margin-left: 15px;
}
.sidebar-nav .sprite-subnav li { margin-bottom: 3px; }
.sidebar-nav .sprite-subnav a {
    padding: 8px 12px;
    font-size: 0.9em;
    font-weight: 400;
    color: #666;
}
.sidebar-nav .sprite-subnav a:hover { color: #4a90e2; background: #e8f4fd; }
.sidebar-nav .sprite-subnav a.active { background: #4a90e2; color: white; }
.main-content {
    flex: 1;
    padding: 20px;
    max-width: 1200px;
    margin: 0 auto;
}
h1, h2, h3 { color: #ff6680; }
.section {
    background: white;
    padding: 20px;
    margin: 20px 0;
    border-radius: 8px;
    box-shadow: 0 2px 4px rgba(0,0,0,0.1);
}
.metadata {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(100px, 1fr));
    gap: 15px;
}
.metadata-item { padding: 10px; background: #f8f9fa; border-radius: 4px; }
.metadata-label { font-weight: bold; color: #666; font-size: 0.9em; }
.sprite {
    border: 2px solid #ddd;
    padding: 15px;
    margin: 15px 0;
    border-radius: 8px;
    background: #fafafa;
}
.sprite-header { display: flex; align-items: center; gap: 15px; margin-bottom: 15px; }
.sprite-name { font-size: 1.3em; font-weight: bold; color: #4a90e2; }
.sprite-props {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(75px, 1fr));
    gap: 8px;
    margin: 10px 0;
}
.prop { background: white; padding: 6px; border-radius: 4px; border-left: 3px solid #4a90e2; }
.prop-label { font-size: 0.75em; color: #666; }
.prop-value { font-weight: bold; color: #333; font-size: 0.9em; }
.assets { display: flex; flex-wrap: wrap; gap: 15px; margin: 15px 0; }
.asset {
    text-align: center;
    padding: 10px;
    background: white;
    border-radius: 4px;
    border: 1px solid #ddd;
}
.asset img {
    max-width: 150px;
    max-height: 150px;
    display: block;
    margin: 0 auto 10px;
    border: 1px solid #eee;
}
.asset-name { font-size: 0.9em; color: #333; word-break: break-word; }
.audio-player { margin-top: 10px; }
.variables-section {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(200px, 1fr));
    gap: 10px;
    margin: 15px 0;
}
.variable {
    background: white;
    padding: 12px;
    border-radius: 4px;
    border: 1px solid #ddd;
    border-left: 4px solid #ff8c1a;
}
.variable-name { font-weight: 600; color: #333; margin-bottom: 5px; font-size: 0.9em; }
.variable-value {
    color: #666;
    font-family: 'Monaco', 'Menlo', monospace;
    font-size: 0.85em;
    word-break: break-word;
}
.lists-section { display: flex; flex-direction: column; gap: 15px; margin: 15px 0; }
.list {
    background: white;
    padding: 12px;
    border-radius: 4px;
    border: 1px solid #ddd;
    border-left: 4px solid #cc5b22;
}
.list-name { font-weight: 600; color: #333; margin-bottom: 10px; font-size: 0.9em; }
.list-values {
    background: #f9f9f9;
    padding: 10px;
    border-radius: 3px;
    font-family: 'Monaco', 'Menlo', monospace;
    font-size: 0.85em;
}
.list-item { padding: 3px 0; color: #555; }
.list-more { padding: 5px 0; color: #888; font-style: italic; }
.messages-section {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(200px, 1fr));
    gap: 10px;
    margin: 15px 0;
}
.message {
    background: white;
    padding: 12px;
    border-radius: 4px;
    border: 1px solid #ddd;
    border-left: 4px solid #ffab19;
}
.message-name { font-weight: 600; color: #333; font-size: 0.9em; }
.blocks-count {
    background: #e8f4fd;
    padding: 10px;
    border-radius: 4px;
    margin: 10px 0;
    border-left: 4px solid #4a90e2;
}
.extensions { display: flex; flex-wrap: wrap; gap: 10px; }
.extension {
    background: #fef3cd;
    padding: 8px 15px;
    border-radius: 20px;
    font-size: 0.9em;
    border: 1px solid #f5c842;
}
.statistics {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(140px, 1fr));
    gap: 12px;
}
.stat-card {
    background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
    color: white;
    padding: 15px;
    border-radius: 8px;
    text-align: center;
}
.stat-value { font-size: 1.8em; font-weight: bold; margin: 8px 0; }
.stat-label { font-size: 0.85em; opacity: 0.9; }
.scripts-section { margin-top: 20px; }
.script {
    background: #f8f9fa;
    padding: 15px;
    margin: 10px 0;
    border-radius: 4px;
    border-left: 4px solid #ff6680;
}
pre.blocks {
    margin: 0;
    padding: 10px;
    background: white;
    border-radius: 4px;
    overflow-x: auto;
}
</style>
</head>
<body>
<div class="sidebar">
    <div class="sidebar-title">&#127912; Navigation</div>
    <ul class="sidebar-nav">
        <li><a href="#info">&#128203; Info</a></li>
        <li><a href="#statistics">&#128202; Statistics</a></li>
        {{if .Extensions}}<li><a href="#extensions">&#128268; Extensions</a></li>{{end}}
        <li><a href="#stage">&#127917; Stage</a></li>
        <li>
            <a href="#sprites">&#127918; Sprites</a>
            <ul class="sprite-subnav" id="sprite-subnav">
                {{range .Sprites}}<li><a href="#{{.Anchor}}">{{.Name}}</a></li>
                {{end}}
            </ul>
        </li>
    </ul>
</div>
<div class="main-content">
    <h1>&#127912; {{.Title}}</h1>

    <div class="section" id="info">
        <h2>Project Information</h2>
        <div class="metadata">
            {{if .Author}}
            <div class="metadata-item">
                <div class="metadata-label">Author</div>
                <div><a href="https://scratch.mit.edu/users/{{.Author}}/" target="_blank">{{.Author}}</a></div>
            </div>
            <div class="metadata-item">
                <div class="metadata-label">Remix</div>
                {{if .RemixParent}}<div>Yes (parent: <a href="https://scratch.mit.edu/projects/{{.RemixParent}}/" target="_blank">{{.RemixParent}}</a>)</div>
                {{else}}<div>No</div>{{end}}
            </div>
            {{end}}
            <div class="metadata-item">
                <div class="metadata-label">Project ID</div>
                {{if .ProjectID}}<div><a href="https://scratch.mit.edu/projects/{{.ProjectID}}/" target="_blank">{{.ProjectID}}</a></div>
                {{else}}<div>-</div>{{end}}
            </div>
            <div class="metadata-item">
                <div class="metadata-label">Scratch Version</div>
                <div>{{.SemVer}}</div>
            </div>
            <div class="metadata-item">
                <div class="metadata-label">VM Version</div>
                <div>{{.VM}}</div>
            </div>
        </div>
    </div>

    <div class="section" id="statistics">
        <h2>Statistics</h2>
        <div class="statistics">
            {{range .StatCards}}
            <div class="stat-card">
                <div class="stat-label">{{.Label}}</div>
                <div class="stat-value">{{.Value}}</div>
            </div>
            {{end}}
        </div>
    </div>

    {{if .Extensions}}
    <div class="section" id="extensions">
        <h2>Extensions Used</h2>
        <div class="extensions">
            {{range .Extensions}}<div class="extension">&#128268; {{.}}</div>
            {{end}}
        </div>
    </div>
    {{end}}

    <div class="section" id="stage">
        <h2>&#127917; Stage</h2>
        {{template "target" .Stage}}
    </div>

    {{if .Sprites}}
    <div class="section" id="sprites">
        <h2>&#127918; Sprites</h2>
        {{range .Sprites}}{{template "target" .}}{{end}}
    </div>
    {{end}}
</div>
<script src="https://cdn.jsdelivr.net/npm/scratchblocks@3.6.4/build/scratchblocks.min.js"></script>
<script>
scratchblocks.renderMatching('pre.blocks', { style: 'scratch3', scale: 0.675 });

document.addEventListener('DOMContentLoaded', function () {
    var sections = document.querySelectorAll('.section[id], .sprite[id]');
    var links = document.querySelectorAll('.sidebar-nav a');
    var byId = {};
    links.forEach(function (link) {
        var href = link.getAttribute('href');
        if (href && href.charAt(0) === '#') byId[href.slice(1)] = link;
    });
    function update() {
        links.forEach(function (l) { l.classList.remove('active'); });
        var current = null;
        sections.forEach(function (s) {
            if (s.getBoundingClientRect().top <= 150) current = s;
        });
        if (!current) return;
        var link = byId[current.id];
        if (link) link.classList.add('active');
        if (current.id.indexOf('sprite-') === 0 && byId['sprites']) byId['sprites'].classList.add('active');
    }
    var pending;
    window.addEventListener('scroll', function () {
        if (pending) window.cancelAnimationFrame(pending);
        pending = window.requestAnimationFrame(update);
    });
    update();
    links.forEach(function (link) {
        link.addEventListener('click', function (e) {
            var href = link.getAttribute('href');
            if (!href || href.charAt(0) !== '#') return;
            e.preventDefault();
            var target = document.querySelector(href);
            if (target) target.scrollIntoView({ behavior: 'smooth', block: 'start' });
        });
    });
});
</script>
</body>
</html>
{{define "target"}}<div class="sprite"{{if .Anchor}} id="{{.Anchor}}"{{end}}>
    <div class="sprite-header"><div class="sprite-name">{{.Name}}</div></div>
    <div class="sprite-props">
        {{range .Props}}<div class="prop"><div class="prop-label">{{.Label}}</div><div class="prop-value">{{.Value}}</div></div>
        {{end}}
    </div>
    {{if not .IsStage}}<div class="blocks-count"><div>&#128230; {{.BlockCount}} blocks | &#127912; {{len .Costumes}} costumes | &#128266; {{len .Sounds}} sounds</div></div>{{end}}
    {{if .Costumes}}
    <h3>{{if .IsStage}}Backdrops{{else}}Costumes{{end}}</h3>
    <div class="assets">
        {{range .Costumes}}<div class="asset"><img src="{{.URL}}" alt="{{.Name}}"><div class="asset-name">{{.Name}}</div></div>
        {{end}}
    </div>
    {{end}}
    {{if .Sounds}}
    <h3>Sounds</h3>
    <div class="assets">
        {{range .Sounds}}<div class="asset"><div class="asset-name">&#128266; {{.Name}}</div><audio controls class="audio-player"><source src="{{.URL}}" type="audio/{{.Format}}"></audio></div>
        {{end}}
    </div>
    {{end}}
    {{if .Variables}}
    <h3>Variables</h3>
    <div class="variables-section">
        {{range .Variables}}<div class="variable"><div class="variable-name">{{.Name}}</div><div class="variable-value">{{.Value}}</div></div>
        {{end}}
    </div>
    {{end}}
    {{if .Lists}}
    <h3>Lists</h3>
    <div class="lists-section">
        {{range .Lists}}<div class="list">
            <div class="list-name">{{.Name}} ({{.Count}} items)</div>
            {{if .Items}}<div class="list-values">
                {{range .Items}}<div class="list-item">{{.}}</div>
                {{end}}{{if .More}}<div class="list-more">... and {{.More}} more</div>{{end}}
            </div>{{end}}
        </div>
        {{end}}
    </div>
    {{end}}
    {{if .Messages}}
    <h3>Messages</h3>
    <div class="messages-section">
        {{range .Messages}}<div class="message"><div class="message-name">&#128226; {{.}}</div></div>
        {{end}}
    </div>
    {{end}}
    {{if .Scripts}}
    <h3>Scripts</h3>
    <div class="scripts-section"><pre class="blocks">{{.Scripts}}</pre></div>
    {{end}}
</div>{{end}}`
