package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/nbeney/scratch-tool/internal/cache"
	"github.com/nbeney/scratch-tool/internal/config"
	"github.com/nbeney/scratch-tool/internal/docgen"
	"github.com/nbeney/scratch-tool/internal/mirror"
	"github.com/nbeney/scratch-tool/internal/pack"
	"github.com/nbeney/scratch-tool/internal/project"
	"github.com/nbeney/scratch-tool/internal/scratchapi"
)

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2ECC71"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1C40F"))
	errStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C"))
	noteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BCD4"))
	headStyle = lipgloss.NewStyle().Bold(true)
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "download":
			downloadCmd(os.Args[2:])
			return
		case "doc":
			docCmd(os.Args[2:])
			return
		case "info":
			infoCmd(os.Args[2:])
			return
		case "cache":
			cacheCmd(os.Args[2:])
			return
		case "help", "-h", "-help", "--help":
			usage(os.Stdout)
			return
		}
	}
	usage(os.Stderr)
	os.Exit(2)
}

func usage(w *os.File) {
	fmt.Fprintln(w, "scratchtool: download, document and inspect Scratch 3 projects")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  scratchtool download <id|url> [-output file] [-json-only] [-no-cache] [-workers n]")
	fmt.Fprintln(w, "  scratchtool doc <id|url|file.sb3|file.json> [-output file] [-no-cache]")
	fmt.Fprintln(w, "  scratchtool info <id|url|file.sb3|file.json> [-no-cache]")
	fmt.Fprintln(w, "  scratchtool cache stats|prune")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Common flags:")
	fmt.Fprintln(w, "  -config path   config file (default scratchtool.yaml; missing file means defaults)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Only public, shared projects can be downloaded.")
}

func downloadCmd(args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	configPath := fs.String("config", "scratchtool.yaml", "config file path")
	output := fs.String("output", "", "output file path (default <title>-<id>-project.sb3)")
	jsonOnly := fs.Bool("json-only", false, "write the raw project.json instead of packing an sb3")
	noCache := fs.Bool("no-cache", false, "bypass the local fetch cache")
	workers := fs.Int("workers", 0, "parallel asset downloads (default from config)")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scratchtool download <project id or url>")
		os.Exit(2)
	}

	cfg := loadConfig(*configPath)
	id, err := scratchapi.ExtractProjectID(fs.Arg(0))
	if err != nil {
		fail(err)
	}

	ctx := context.Background()
	client := scratchapi.New()
	store := openCache(cfg, *noCache)
	if store != nil {
		defer store.Close()
	}

	fmt.Printf("Downloading project %s...\n", id)
	meta, raw, err := fetchProject(ctx, client, store, id)
	if err != nil {
		fail(err)
	}

	proj, err := project.Decode(raw)
	if err != nil {
		fail(fmt.Errorf("invalid project format: %w", err))
	}

	name := *output
	if *jsonOnly {
		if name == "" {
			name = fmt.Sprintf("%s-%s-project.json", pack.SanitizeFileName(meta.Title), id)
		}
		if err := os.WriteFile(name, raw, 0o644); err != nil {
			fail(err)
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("✓ Successfully downloaded to %s", name)))
		return
	}
	if name == "" {
		name = fmt.Sprintf("%s-%s-project.sb3", pack.SanitizeFileName(meta.Title), id)
	}

	fmt.Println("Collecting asset information...")
	refs := pack.CollectAssets(proj)
	fmt.Printf("Building .sb3 file with %d assets...\n", len(refs))

	var fetch pack.Fetcher = client
	var cached *cache.Fetcher
	if store != nil {
		cached = &cache.Fetcher{Store: store, Src: client}
		fetch = cached
	}

	w := *workers
	if w <= 0 {
		w = cfg.Fetch.AssetWorkers
	}
	pkg := &pack.Packager{
		Fetch:   fetch,
		Workers: w,
		OnProgress: func(done, total int, md5ext string) {
			fmt.Printf("  Downloading asset %d/%d: %s\n", done, total, md5ext)
		},
	}

	entries, err := pkg.Entries(ctx, raw, proj)
	if err != nil {
		fail(err)
	}
	f, err := os.Create(name)
	if err != nil {
		fail(err)
	}
	if err := pack.WriteArchive(f, entries); err != nil {
		f.Close()
		_ = os.Remove(name)
		fail(err)
	}
	if err := f.Close(); err != nil {
		fail(err)
	}

	if cached != nil {
		hits, misses := cached.Stats()
		if hits > 0 {
			fmt.Printf("Asset cache: %d hits, %d misses\n", hits, misses)
		}
	}

	fmt.Println(okStyle.Render(fmt.Sprintf("✓ Successfully downloaded to %s", name)))

	mir, err := buildMirror(cfg.Mirror)
	if err != nil {
		fail(err)
	}
	if mir != nil {
		fmt.Println("Mirroring archive...")
		mir.Enqueue(name)
		mir.Close()
		st := mir.Stats()
		if st.FailedTotal > 0 || st.DroppedTotal > 0 {
			fmt.Println(warnStyle.Render(fmt.Sprintf("Mirror finished with problems: uploaded=%d failed=%d dropped=%d", st.UploadedTotal, st.FailedTotal, st.DroppedTotal)))
		} else {
			fmt.Printf("Mirror: uploaded=%d\n", st.UploadedTotal)
		}
	}
}

func docCmd(args []string) {
	fs := flag.NewFlagSet("doc", flag.ExitOnError)
	configPath := fs.String("config", "scratchtool.yaml", "config file path")
	output := fs.String("output", "", "output file path (default next to the input)")
	noCache := fs.Bool("no-cache", false, "bypass the local fetch cache")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scratchtool doc <project id, url or .sb3/.json file>")
		os.Exit(2)
	}
	arg := fs.Arg(0)

	var (
		raw  []byte
		opts docgen.Options
		out  = *output
	)
	if isLocalFile(arg) {
		var err error
		var title string
		var pid int64
		raw, title, pid, err = readLocalProject(arg)
		if err != nil {
			fail(err)
		}
		opts = docgen.Options{ProjectID: pid, Title: title}
		if out == "" {
			out = strings.TrimSuffix(arg, filepath.Ext(arg)) + ".html"
		}
	} else {
		cfg := loadConfig(*configPath)
		id, err := scratchapi.ExtractProjectID(arg)
		if err != nil {
			fail(err)
		}
		store := openCache(cfg, *noCache)
		if store != nil {
			defer store.Close()
		}
		fmt.Printf("Generating documentation for project %s...\n", id)
		meta, body, err := fetchProject(context.Background(), scratchapi.New(), store, id)
		if err != nil {
			fail(err)
		}
		raw = body
		pid, _ := strconv.ParseInt(id, 10, 64)
		opts = docgen.Options{ProjectID: pid, Title: meta.Title, Metadata: meta}
		if out == "" {
			out = fmt.Sprintf("%s-%s-project.html", pack.SanitizeFileName(meta.Title), id)
		}
	}

	proj, err := project.Decode(raw)
	if err != nil {
		fail(fmt.Errorf("invalid project format: %w", err))
	}
	page, err := docgen.Generate(proj, opts)
	if err != nil {
		fail(err)
	}
	if err := os.WriteFile(out, page, 0o644); err != nil {
		fail(err)
	}

	fmt.Println(okStyle.Render(fmt.Sprintf("✓ Documentation written to %s", out)))
	if abs, err := filepath.Abs(out); err == nil {
		fmt.Println(noteStyle.Render("Open it in a browser: file://" + abs))
	}
}

func infoCmd(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configPath := fs.String("config", "scratchtool.yaml", "config file path")
	noCache := fs.Bool("no-cache", false, "bypass the local fetch cache")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scratchtool info <project id, url or .sb3/.json file>")
		os.Exit(2)
	}
	arg := fs.Arg(0)

	var (
		raw   []byte
		meta  *scratchapi.ProjectMetadata
		title string
	)
	if isLocalFile(arg) {
		var err error
		raw, title, _, err = readLocalProject(arg)
		if err != nil {
			fail(err)
		}
	} else {
		cfg := loadConfig(*configPath)
		id, err := scratchapi.ExtractProjectID(arg)
		if err != nil {
			fail(err)
		}
		store := openCache(cfg, *noCache)
		if store != nil {
			defer store.Close()
		}
		meta, raw, err = fetchProject(context.Background(), scratchapi.New(), store, id)
		if err != nil {
			fail(err)
		}
		title = meta.Title
	}

	proj, err := project.Decode(raw)
	if err != nil {
		fail(fmt.Errorf("invalid project format: %w", err))
	}
	printInfo(title, meta, proj.Stats())
}

func printInfo(title string, meta *scratchapi.ProjectMetadata, st project.Statistics) {
	fmt.Println(headStyle.Render("Project"))
	row := func(k string, v any) { fmt.Printf("  %-18s %v\n", k, v) }
	row("Title", title)
	if meta != nil {
		row("ID", meta.ID)
		row("Author", meta.Author.Username)
		row("Public", yesNo(meta.Public))
		if meta.History.Created != nil {
			row("Created", meta.History.Created.Format("2006-01-02"))
		}
		if meta.History.Modified != nil {
			row("Modified", meta.History.Modified.Format("2006-01-02"))
		}
		if meta.History.Shared != nil {
			row("Shared", meta.History.Shared.Format("2006-01-02"))
		}
		row("Views", meta.Stats.Views)
		row("Loves", meta.Stats.Loves)
		row("Favorites", meta.Stats.Favorites)
		row("Remixes", meta.Stats.Remixes)
		if meta.Remix.Parent != nil {
			row("Remix parent", *meta.Remix.Parent)
		}
	}

	fmt.Println()
	fmt.Println(headStyle.Render("Statistics"))
	row("Sprites", st.Sprites)
	row("Scripts", st.Scripts)
	row("Blocks", st.Blocks)
	row("Costumes", st.Costumes)
	row("Sounds", st.Sounds)
	row("Global variables", st.GlobalVariables)
	row("Sprite variables", st.SpriteVariables)
	row("Cloud variables", st.CloudVariables)
	row("Lists", st.Lists)
	row("Broadcasts", st.Broadcasts)
	row("Custom blocks", st.CustomBlocks)
	row("Clone creations", st.Clones)
	if len(st.Extensions) > 0 {
		row("Extensions", strings.Join(st.Extensions, ", "))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func cacheCmd(args []string) {
	fs := flag.NewFlagSet("cache", flag.ExitOnError)
	configPath := fs.String("config", "scratchtool.yaml", "config file path")
	_ = fs.Parse(args)

	action := "stats"
	if fs.NArg() > 0 {
		action = strings.TrimSpace(fs.Arg(0))
	}

	cfg := loadConfig(*configPath)
	store, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL())
	if err != nil {
		fail(fmt.Errorf("open cache: %w", err))
	}
	defer store.Close()

	switch action {
	case "stats":
		totals, err := store.Totals()
		if err != nil {
			fail(err)
		}
		fmt.Println(headStyle.Render("Fetch cache"))
		fmt.Printf("  %-18s %v\n", "Path", cfg.Cache.Path)
		fmt.Printf("  %-18s %v\n", "TTL", cfg.Cache.TTL())
		fmt.Printf("  %-18s %v\n", "Projects", totals.Projects)
		fmt.Printf("  %-18s %v\n", "Assets", totals.Assets)
		fmt.Printf("  %-18s %v\n", "Asset bytes", totals.AssetBytes)
	case "prune":
		n, err := store.Prune()
		if err != nil {
			fail(err)
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("✓ Pruned %d stale project rows", n)))
	default:
		fmt.Fprintln(os.Stderr, "unknown action:", action)
		fmt.Fprintln(os.Stderr, "usage: scratchtool cache [-config path] stats|prune")
		os.Exit(2)
	}
}

// fetchProject returns the metadata record and the raw project.json bytes,
// consulting the cache first. Cache writes are best effort.
func fetchProject(ctx context.Context, client *scratchapi.Client, store *cache.Store, id string) (*scratchapi.ProjectMetadata, []byte, error) {
	pid, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("project id %q: %w", id, err)
	}
	if store != nil {
		if hit, err := store.GetProject(pid); err == nil && hit != nil {
			var meta scratchapi.ProjectMetadata
			if json.Unmarshal(hit.Metadata, &meta) == nil {
				fmt.Printf("Using cached copy of project %s\n", id)
				return &meta, hit.ProjectJSON, nil
			}
		}
	}

	fmt.Println("Fetching project metadata...")
	meta, err := client.ProjectMetadata(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	fmt.Println("Downloading project.json...")
	raw, err := client.ProjectJSON(ctx, id, meta.ProjectToken)
	if err != nil {
		return nil, nil, err
	}

	if store != nil {
		if metaJSON, err := json.Marshal(meta); err == nil {
			_ = store.PutProject(pid, meta.Title, metaJSON, raw)
		}
	}
	return meta, raw, nil
}

func isLocalFile(arg string) bool {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".sb3", ".json":
		return true
	}
	return false
}

// readLocalProject loads a .sb3 or .json file and recovers what it can of
// the title and project id from the download naming convention.
func readLocalProject(path string) (raw []byte, title string, pid int64, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sb3":
		f, err := os.Open(path)
		if err != nil {
			return nil, "", 0, err
		}
		defer f.Close()
		fi, err := f.Stat()
		if err != nil {
			return nil, "", 0, err
		}
		raw, _, err = pack.ReadArchive(f, fi.Size())
		if err != nil {
			return nil, "", 0, err
		}
	case ".json":
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, "", 0, err
		}
	default:
		return nil, "", 0, fmt.Errorf("unsupported file type %q (want .sb3 or .json)", filepath.Ext(path))
	}

	title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if id := pack.ProjectIDFromFilename(path); id != "" {
		pid, _ = strconv.ParseInt(id, 10, 64)
		title = strings.TrimSuffix(title, fmt.Sprintf("-%s-project", id))
	}
	return raw, title, pid, nil
}

func loadConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil && !os.IsNotExist(err) {
		fail(fmt.Errorf("load config: %w", err))
	}
	cfg.ApplyEnv()
	return cfg
}

func openCache(cfg config.Config, bypass bool) *cache.Store {
	if bypass || cfg.Cache.Disabled {
		return nil
	}
	store, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL())
	if err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("Warning: fetch cache disabled: "+err.Error()))
		return nil
	}
	return store
}

func buildMirror(cfg config.MirrorConfig) (*mirror.Mirror, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := mirror.NewS3Client(mirror.S3Options{
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		Bucket:    cfg.Bucket,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("mirror enabled but misconfigured: %w", err)
	}
	logger := log.New(os.Stdout, "[mirror] ", log.LstdFlags|log.Lmicroseconds)
	return mirror.New(client, cfg.Prefix, cfg.Workers, cfg.QueueCapacity, logger), nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errStyle.Render("Error: "+err.Error()))
	switch {
	case errors.Is(err, scratchapi.ErrProjectNotFound):
		fmt.Fprintln(os.Stderr, warnStyle.Render("The project id may be wrong, or the project was deleted."))
		fmt.Fprintln(os.Stderr, noteStyle.Render("Note: only public, shared projects can be downloaded."))
	case errors.Is(err, scratchapi.ErrProjectPrivate):
		fmt.Fprintln(os.Stderr, noteStyle.Render("Note: only public, shared projects can be downloaded."))
	}
	os.Exit(1)
}
