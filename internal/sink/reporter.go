package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/counter"
	"github.com/sirupsen/logrus"
)

// Report is JSON body posted to the recording service
type Report struct {
	VehicleID  string    `json:"vehicle_id"`
	Category   string    `json:"category"`
	DetectedAt time.Time `json:"detected_at"`
	Total      uint64    `json:"total"`
}

// HTTPReporter posts every counted vehicle to an external recording service.
// Each report is sent from its own goroutine; failures are logged and dropped.
type HTTPReporter struct {
	url        string
	category   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logrus.Logger
	wg         sync.WaitGroup
}

// NewHTTPReporter creates new HTTPReporter
func NewHTTPReporter(url, category string, timeout time.Duration, logger *logrus.Logger) *HTTPReporter {
	return &HTTPReporter{
		url:      url,
		category: category,
		timeout:  timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (r *HTTPReporter) VehicleCounted(vehicle counter.CountedVehicle) {
	report := Report{
		VehicleID:  vehicle.ID.String(),
		Category:   r.category,
		DetectedAt: vehicle.Timestamp,
		Total:      vehicle.Total,
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.send(report); err != nil {
			r.logger.WithError(err).WithField("vehicle_id", report.VehicleID).Warn("Report was not delivered")
		}
	}()
}

// Wait blocks until every in-flight report is finished
func (r *HTTPReporter) Wait() {
	r.wg.Wait()
}

func (r *HTTPReporter) send(report Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	r.logger.Debugf("Sending report to %s", r.url)
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("recording service returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
