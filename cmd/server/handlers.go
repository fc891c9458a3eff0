package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/nbeney/scratch-tool/internal/cache"
	"github.com/nbeney/scratch-tool/internal/docgen"
	"github.com/nbeney/scratch-tool/internal/mirror"
	"github.com/nbeney/scratch-tool/internal/pack"
	"github.com/nbeney/scratch-tool/internal/progress"
	"github.com/nbeney/scratch-tool/internal/project"
	"github.com/nbeney/scratch-tool/internal/scratchapi"
)

// Packing is bounded by its own deadline, not the requesting client's:
// concurrent waiters share one pack and the first client disconnecting must
// not abort it for the rest.
const archiveTimeout = 5 * time.Minute

type application struct {
	client     *scratchapi.Client
	store      *cache.Store
	docs       *lru.Cache[int64, []byte]
	broker     *progress.Broker
	mirror     *mirror.Mirror
	logger     *log.Logger
	workers    int
	archiveDir string
	upgrader   websocket.Upgrader
	metrics    serverMetrics
	archives   singleflight.Group
}

func newApplication(client *scratchapi.Client, store *cache.Store, docs *lru.Cache[int64, []byte], mir *mirror.Mirror, archiveDir string, workers int, logger *log.Logger) *application {
	return &application{
		client:     client,
		store:      store,
		docs:       docs,
		broker:     progress.NewBroker(),
		mirror:     mir,
		logger:     logger,
		workers:    workers,
		archiveDir: archiveDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", app.handleHome)
	mux.HandleFunc("/generate", app.handleGenerate)
	mux.HandleFunc("/document/", app.handleDocument)
	mux.HandleFunc("/archive/", app.handleArchive)
	mux.HandleFunc("/ws/progress", app.handleProgressWS)
	mux.HandleFunc("/healthz", app.handleHealthz)
	mux.HandleFunc("/metrics", app.handleMetrics)
	return mux
}

func (app *application) handleHome(rw http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(rw, r)
		return
	}
	var buf bytes.Buffer
	data := struct{ Error string }{Error: r.URL.Query().Get("error")}
	if err := homeTemplate.Execute(&buf, data); err != nil {
		app.logger.Printf("home template: %v", err)
		http.Error(rw, "internal error", http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = rw.Write(buf.Bytes())
}

func (app *application) handleGenerate(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	input := strings.TrimSpace(r.FormValue("project_input"))
	if input == "" {
		app.redirectHome(rw, r, "Please enter a project ID or URL")
		return
	}
	id, err := scratchapi.ExtractProjectID(input)
	if err != nil {
		app.redirectHome(rw, r, err.Error())
		return
	}
	http.Redirect(rw, r, "/document/"+id, http.StatusSeeOther)
}

func (app *application) handleDocument(rw http.ResponseWriter, r *http.Request) {
	id, pid, ok := projectIDFromPath(r.URL.Path, "/document/")
	if !ok {
		http.NotFound(rw, r)
		return
	}

	if page, ok := app.docs.Get(pid); ok {
		app.metrics.docCacheHits.Add(1)
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = rw.Write(page)
		return
	}

	app.logger.Printf("generating documentation for project %s", id)
	meta, raw, err := app.fetchProject(r.Context(), id, pid)
	if err != nil {
		app.redirectHome(rw, r, err.Error())
		return
	}
	proj, err := project.Decode(raw)
	if err != nil {
		app.redirectHome(rw, r, "Invalid project format: "+err.Error())
		return
	}
	page, err := docgen.Generate(proj, docgen.Options{ProjectID: pid, Title: meta.Title, Metadata: meta})
	if err != nil {
		app.redirectHome(rw, r, err.Error())
		return
	}

	app.docs.Add(pid, page)
	app.metrics.docsGenerated.Add(1)
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = rw.Write(page)
}

func (app *application) handleArchive(rw http.ResponseWriter, r *http.Request) {
	id, pid, ok := projectIDFromPath(r.URL.Path, "/archive/")
	if !ok {
		http.NotFound(rw, r)
		return
	}

	v, err, _ := app.archives.Do(id, func() (any, error) {
		return app.packArchive(id, pid)
	})
	if err != nil {
		http.Error(rw, err.Error(), statusForCode(progress.CodeFor(err)))
		return
	}
	path := v.(string)

	rw.Header().Set("Content-Type", "application/zip")
	rw.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(rw, r, path)
}

// packArchive fetches, packs and stores one project archive, publishing
// progress events along the way. It returns the path of the packed file.
func (app *application) packArchive(id string, pid int64) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	fail := func(err error) (string, error) {
		app.broker.Publish(progress.Event{
			ProjectID: pid,
			Stage:     progress.StageError,
			Detail:    err.Error(),
			Code:      progress.CodeFor(err),
		})
		return "", err
	}

	app.broker.Publish(progress.Event{ProjectID: pid, Stage: progress.StageMetadata})
	meta, raw, err := app.fetchProject(ctx, id, pid)
	if err != nil {
		return fail(err)
	}
	app.broker.Publish(progress.Event{ProjectID: pid, Stage: progress.StageProject, Detail: meta.Title})

	proj, err := project.Decode(raw)
	if err != nil {
		return fail(err)
	}

	name := fmt.Sprintf("%s-%s-project.sb3", pack.SanitizeFileName(meta.Title), id)
	path := filepath.Join(app.archiveDir, name)
	if _, err := os.Stat(path); err == nil {
		app.broker.Publish(progress.Event{ProjectID: pid, Stage: progress.StageDone, Detail: name})
		return path, nil
	}

	var fetch pack.Fetcher = app.client
	if app.store != nil {
		fetch = &cache.Fetcher{Store: app.store, Src: app.client}
	}
	total := len(pack.CollectAssets(proj))
	app.broker.Publish(progress.Event{ProjectID: pid, Stage: progress.StageAssets, Total: total})

	pkg := &pack.Packager{
		Fetch:   fetch,
		Workers: app.workers,
		OnProgress: func(done, total int, md5ext string) {
			app.metrics.assetFetches.Add(1)
			app.broker.Publish(progress.Event{
				ProjectID: pid,
				Stage:     progress.StageAssets,
				Done:      done,
				Total:     total,
				Detail:    md5ext,
			})
		},
	}
	entries, err := pkg.Entries(ctx, raw, proj)
	if err != nil {
		return fail(err)
	}

	app.broker.Publish(progress.Event{ProjectID: pid, Stage: progress.StageArchive})
	f, err := os.Create(path)
	if err != nil {
		return fail(err)
	}
	if err := pack.WriteArchive(f, entries); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fail(err)
	}
	if err := f.Close(); err != nil {
		return fail(err)
	}

	app.metrics.archivesPacked.Add(1)
	if app.mirror != nil {
		app.mirror.Enqueue(path)
	}
	app.broker.Publish(progress.Event{ProjectID: pid, Stage: progress.StageDone, Detail: name})
	app.logger.Printf("packed project %s (%d assets) to %s", id, total, name)
	return path, nil
}

func (app *application) handleHealthz(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true})
}

// fetchProject returns the metadata record and the raw project.json bytes,
// consulting the cache first. Cache writes are best effort.
func (app *application) fetchProject(ctx context.Context, id string, pid int64) (*scratchapi.ProjectMetadata, []byte, error) {
	if app.store != nil {
		if hit, err := app.store.GetProject(pid); err == nil && hit != nil {
			var meta scratchapi.ProjectMetadata
			if json.Unmarshal(hit.Metadata, &meta) == nil {
				return &meta, hit.ProjectJSON, nil
			}
		}
	}

	meta, err := app.client.ProjectMetadata(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	raw, err := app.client.ProjectJSON(ctx, id, meta.ProjectToken)
	if err != nil {
		return nil, nil, err
	}

	if app.store != nil {
		if metaJSON, err := json.Marshal(meta); err == nil {
			_ = app.store.PutProject(pid, meta.Title, metaJSON, raw)
		}
	}
	return meta, raw, nil
}

func (app *application) redirectHome(rw http.ResponseWriter, r *http.Request, msg string) {
	app.logger.Printf("%s %s: %s", r.Method, r.URL.Path, msg)
	http.Redirect(rw, r, "/?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

// projectIDFromPath extracts the numeric id segment after prefix. Extra path
// segments or a non-numeric id fail the match.
func projectIDFromPath(path, prefix string) (string, int64, bool) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", 0, false
	}
	pid, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return rest, pid, true
}

func statusForCode(code string) int {
	switch code {
	case progress.CodeNotFound:
		return http.StatusNotFound
	case progress.CodePrivate:
		return http.StatusForbidden
	case progress.CodeMalformed:
		return http.StatusUnprocessableEntity
	case progress.CodeAssetFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Scratch Project Documenter</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            padding: 20px;
        }

        .container {
            background: white;
            border-radius: 20px;
            box-shadow: 0 20px 60px rgba(0, 0, 0, 0.3);
            padding: 40px;
            max-width: 600px;
            width: 100%;
        }

        h1 {
            color: #333;
            margin-bottom: 10px;
            font-size: 2.5em;
            text-align: center;
        }

        .subtitle {
            color: #666;
            text-align: center;
            margin-bottom: 30px;
            font-size: 1.1em;
        }

        .form-group {
            margin-bottom: 20px;
        }

        label {
            display: block;
            color: #555;
            font-weight: 600;
            margin-bottom: 8px;
        }

        input[type="text"] {
            width: 100%;
            padding: 15px;
            border: 2px solid #e0e0e0;
            border-radius: 10px;
            font-size: 16px;
            transition: border-color 0.3s;
        }

        input[type="text"]:focus {
            outline: none;
            border-color: #667eea;
        }

        button {
            width: 100%;
            padding: 15px;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            border: none;
            border-radius: 10px;
            font-size: 18px;
            font-weight: 600;
            cursor: pointer;
            transition: transform 0.2s, box-shadow 0.2s;
        }

        button:hover {
            transform: translateY(-2px);
            box-shadow: 0 5px 15px rgba(102, 126, 234, 0.4);
        }

        button:active {
            transform: translateY(0);
        }

        .examples {
            margin-top: 30px;
            padding: 20px;
            background: #f8f9fa;
            border-radius: 10px;
        }

        .examples h3 {
            color: #555;
            margin-bottom: 10px;
            font-size: 1.2em;
        }

        .examples ul {
            list-style: none;
            color: #666;
        }

        .examples li {
            margin: 8px 0;
            padding-left: 20px;
            position: relative;
        }

        .examples li:before {
            content: "→";
            position: absolute;
            left: 0;
            color: #667eea;
        }

        .error {
            background: #fee;
            border: 1px solid #fcc;
            padding: 15px;
            border-radius: 10px;
            margin-bottom: 20px;
            color: #c33;
        }

        .footer {
            margin-top: 30px;
            text-align: center;
            color: #999;
            font-size: 0.9em;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>🎨 Scratch Documenter</h1>
        <p class="subtitle">Generate beautiful HTML documentation for any Scratch project</p>

        {{if .Error}}
        <div class="error">
            <strong>Error:</strong> {{.Error}}
        </div>
        {{end}}

        <form method="POST" action="/generate">
            <div class="form-group">
                <label for="project_input">Project ID or URL</label>
                <input
                    type="text"
                    id="project_input"
                    name="project_input"
                    placeholder="1259204833 or https://scratch.mit.edu/projects/1259204833/"
                    required
                    autofocus
                >
            </div>

            <button type="submit">📄 Generate Documentation</button>
        </form>

        <div class="examples">
            <h3>Example Inputs:</h3>
            <ul>
                <li>Project ID: <code>1259204833</code></li>
                <li>Full URL: <code>https://scratch.mit.edu/projects/1259204833/</code></li>
                <li>Editor URL: <code>https://scratch.mit.edu/projects/1259204833/editor</code></li>
            </ul>
        </div>

        <div class="footer">
            © 2026 by Nicolas Beney - licensed under <a href="https://creativecommons.org/licenses/by-nc-sa/4.0/">CC BY-NC-SA 4.0</a>
        </div>
    </div>
</body>
</html>
`))
