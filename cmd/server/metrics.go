package main

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

type serverMetrics struct {
	docsGenerated  atomic.Uint64
	archivesPacked atomic.Uint64
	assetFetches   atomic.Uint64
	docCacheHits   atomic.Uint64
}

func (app *application) handleMetrics(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(rw, "# HELP scratchtool_docs_generated_total Documentation pages generated.\n")
	fmt.Fprintf(rw, "# TYPE scratchtool_docs_generated_total counter\n")
	fmt.Fprintf(rw, "scratchtool_docs_generated_total %d\n", app.metrics.docsGenerated.Load())

	fmt.Fprintf(rw, "# HELP scratchtool_archives_packed_total Project archives packed.\n")
	fmt.Fprintf(rw, "# TYPE scratchtool_archives_packed_total counter\n")
	fmt.Fprintf(rw, "scratchtool_archives_packed_total %d\n", app.metrics.archivesPacked.Load())

	fmt.Fprintf(rw, "# HELP scratchtool_asset_fetches_total Assets fetched while packing.\n")
	fmt.Fprintf(rw, "# TYPE scratchtool_asset_fetches_total counter\n")
	fmt.Fprintf(rw, "scratchtool_asset_fetches_total %d\n", app.metrics.assetFetches.Load())

	fmt.Fprintf(rw, "# HELP scratchtool_doc_cache_hits_total Documentation pages served from the in-memory cache.\n")
	fmt.Fprintf(rw, "# TYPE scratchtool_doc_cache_hits_total counter\n")
	fmt.Fprintf(rw, "scratchtool_doc_cache_hits_total %d\n", app.metrics.docCacheHits.Load())

	fmt.Fprintf(rw, "# HELP scratchtool_ws_clients Connected progress subscribers.\n")
	fmt.Fprintf(rw, "# TYPE scratchtool_ws_clients gauge\n")
	fmt.Fprintf(rw, "scratchtool_ws_clients %d\n", app.broker.Subscribers())

	if app.store != nil {
		if totals, err := app.store.Totals(); err == nil {
			fmt.Fprintf(rw, "# HELP scratchtool_cache_projects Projects in the fetch cache.\n")
			fmt.Fprintf(rw, "# TYPE scratchtool_cache_projects gauge\n")
			fmt.Fprintf(rw, "scratchtool_cache_projects %d\n", totals.Projects)
			fmt.Fprintf(rw, "# HELP scratchtool_cache_assets Assets in the fetch cache.\n")
			fmt.Fprintf(rw, "# TYPE scratchtool_cache_assets gauge\n")
			fmt.Fprintf(rw, "scratchtool_cache_assets %d\n", totals.Assets)
			fmt.Fprintf(rw, "# HELP scratchtool_cache_asset_bytes Stored asset bytes (compressed).\n")
			fmt.Fprintf(rw, "# TYPE scratchtool_cache_asset_bytes gauge\n")
			fmt.Fprintf(rw, "scratchtool_cache_asset_bytes %d\n", totals.AssetBytes)
		}
	}

	if app.mirror != nil {
		st := app.mirror.Stats()
		fmt.Fprintf(rw, "# HELP scratchtool_mirror_queue_depth Archives waiting to upload.\n")
		fmt.Fprintf(rw, "# TYPE scratchtool_mirror_queue_depth gauge\n")
		fmt.Fprintf(rw, "scratchtool_mirror_queue_depth %d\n", st.QueueDepth)
		fmt.Fprintf(rw, "# HELP scratchtool_mirror_queue_capacity Upload queue capacity.\n")
		fmt.Fprintf(rw, "# TYPE scratchtool_mirror_queue_capacity gauge\n")
		fmt.Fprintf(rw, "scratchtool_mirror_queue_capacity %d\n", st.QueueCapacity)
		fmt.Fprintf(rw, "# HELP scratchtool_mirror_enqueued_total Archives accepted for upload.\n")
		fmt.Fprintf(rw, "# TYPE scratchtool_mirror_enqueued_total counter\n")
		fmt.Fprintf(rw, "scratchtool_mirror_enqueued_total %d\n", st.EnqueuedTotal)
		fmt.Fprintf(rw, "# HELP scratchtool_mirror_saturated_total Enqueues that found the queue full.\n")
		fmt.Fprintf(rw, "# TYPE scratchtool_mirror_saturated_total counter\n")
		fmt.Fprintf(rw, "scratchtool_mirror_saturated_total %d\n", st.SaturatedTotal)
		fmt.Fprintf(rw, "# HELP scratchtool_mirror_dropped_total Archives dropped after the enqueue wait.\n")
		fmt.Fprintf(rw, "# TYPE scratchtool_mirror_dropped_total counter\n")
		fmt.Fprintf(rw, "scratchtool_mirror_dropped_total %d\n", st.DroppedTotal)
		fmt.Fprintf(rw, "# HELP scratchtool_mirror_uploaded_total Archives uploaded to the bucket.\n")
		fmt.Fprintf(rw, "# TYPE scratchtool_mirror_uploaded_total counter\n")
		fmt.Fprintf(rw, "scratchtool_mirror_uploaded_total %d\n", st.UploadedTotal)
		fmt.Fprintf(rw, "# HELP scratchtool_mirror_failed_total Uploads that exhausted their retries.\n")
		fmt.Fprintf(rw, "# TYPE scratchtool_mirror_failed_total counter\n")
		fmt.Fprintf(rw, "scratchtool_mirror_failed_total %d\n", st.FailedTotal)
	}
}
