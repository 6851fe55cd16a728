package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sceneCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scene_count",
		Help: "The number of live scenes.",
	})

	sceneCountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scene_count_total",
		Help: "The total number of scenes created.",
	})

	objectCountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "object_count_total",
		Help: "The total number of objects added to scenes.",
	})
)

func instrumentIncreaseSceneGauge() {
	sceneCount.Inc()
}

func instrumentDecreaseSceneGauge() {
	sceneCount.Dec()
}

func instrumentCountScene() {
	sceneCountTotal.Inc()
}

func instrumentCountObject() {
	objectCountTotal.Inc()
}
