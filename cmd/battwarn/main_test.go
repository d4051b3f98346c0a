package main

import (
	"testing"
	"time"

	"codeberg.org/mutker/battwarn/internal/config"
	"codeberg.org/mutker/battwarn/internal/notify"
	"github.com/stretchr/testify/assert"
)

func TestNotifyTemplate(t *testing.T) {
	cfg := &config.Config{Icon: "battery-empty", Sound: "", Urgency: "normal", Timeout: 10}

	tmpl := notifyTemplate(cfg)
	assert.Equal(t, "battwarn", tmpl.AppName)
	assert.Equal(t, "battery-empty", tmpl.Icon)
	assert.Empty(t, tmpl.Sound)
	assert.Equal(t, notify.UrgencyNormal, tmpl.Urgency)
	assert.Equal(t, 10*time.Second, tmpl.Timeout)
	assert.True(t, tmpl.Transient)
}

func TestMetricsConfig(t *testing.T) {
	mc := metricsConfig(&config.Config{Metrics: true, MetricsDB: "/tmp/battwarn.db"})
	assert.True(t, mc.Enabled)
	assert.Equal(t, "/tmp/battwarn.db", mc.DBPath)
	assert.NoError(t, mc.Validate())
}
