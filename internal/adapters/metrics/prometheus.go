package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lexigen_stage_duration_seconds",
		Help:    "Pipeline stage duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
	}, []string{"stage"})

	StageCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexigen_stage_cache_hits_total",
		Help: "Stage invocations served entirely from cache",
	}, []string{"stage"})

	PromptsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexigen_prompts_generated_total",
		Help: "Total prompts drafted by the LLM",
	})

	EntriesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexigen_entries_generated_total",
		Help: "Total vocabulary entries with completed image generation",
	})

	GenerationInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lexigen_generation_in_flight",
		Help: "Image generation calls currently outstanding",
	})

	ImagesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexigen_images_written_total",
		Help: "Total image artifacts written to disk",
	})

	ScoresComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexigen_scores_computed_total",
		Help: "Total similarity scores computed",
	})
)
