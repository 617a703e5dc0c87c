package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedCounter int

func (c fixedCounter) GetClientCount() int { return int(c) }

func TestHealthReport(t *testing.T) {
	svc := NewHealthService(newTestDB(t), nil, fixedCounter(3), "test")
	report := svc.Report(context.Background())

	assert.Equal(t, healthOK, report.Status)
	assert.Equal(t, 3, report.WSClients)
	assert.Equal(t, 200, HTTPStatus(report.Status))
	assert.Equal(t, dependencyUp, report.Dependencies[0].Status)
	assert.Equal(t, dependencyDisabled, report.Dependencies[1].Status)

	down := NewHealthService(nil, nil, nil, "")
	report = down.Report(context.Background())
	assert.Equal(t, healthCritical, report.Status)
	assert.Equal(t, 503, HTTPStatus(report.Status))
}

func TestHumanizeDuration(t *testing.T) {
	assert.Equal(t, "0s", humanizeDuration(0))
	assert.Equal(t, "1d 2h 3m 4s", humanizeDuration(26*time.Hour+3*time.Minute+4*time.Second))
	assert.Equal(t, "5m", humanizeDuration(5*time.Minute))
}
