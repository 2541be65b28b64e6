// Copyright 2024 The terminos Authors
// This file is part of the terminos library.
//
// The terminos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The terminos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the terminos library. If not, see <http://www.gnu.org/licenses/>.

package rpc

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// contentType is the only content type the HTTP surface accepts,
// matching the teacher's own http.go validation.
const contentType = "application/json"

// NewHTTPServer builds a fasthttp.Server exposing d's dispatcher at
// "/" and a Prometheus scrape endpoint at "/metrics".
func NewHTTPServer(d *Dispatcher) *fasthttp.Server {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(&dispatcherCollector{d: d})
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	return &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) == "/metrics" {
				metricsHandler(ctx)
				return
			}
			serveRPC(d, ctx)
		},
	}
}

func serveRPC(d *Dispatcher, ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}
	if ct := string(ctx.Request.Header.ContentType()); !strings.HasPrefix(ct, contentType) {
		ctx.SetStatusCode(fasthttp.StatusUnsupportedMediaType)
		return
	}

	out := d.Handle(context.Background(), ctx.PostBody())
	if out == nil {
		ctx.SetStatusCode(fasthttp.StatusNoContent)
		return
	}
	ctx.SetContentType(contentType)
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(out)
}

// dispatcherCollector bridges a Dispatcher's per-method go-metrics
// counters and timers into Prometheus's exposition format, so the
// call-counter/elapsed-histogram tracking §4.7 asks for (kept in
// go-metrics, matching the teacher's own Meter() convention) is
// reachable from a standard /metrics scrape without duplicating the
// bookkeeping in a second metrics library.
type dispatcherCollector struct {
	d *Dispatcher
}

func (c *dispatcherCollector) Describe(ch chan<- *prometheus.Desc) {
	// Metric set is dynamic (one per registered RPC method), so no
	// fixed descriptors are advertised up front.
}

func (c *dispatcherCollector) Collect(ch chan<- prometheus.Metric) {
	c.d.Metrics().Each(func(name string, i interface{}) {
		metricName := "terminos_rpc_" + sanitizeMetricName(name)
		// A Timer satisfies both interfaces below (it is a Meter and a
		// Histogram combined), so these are independent checks, not a
		// type switch, to emit both its count and its mean.
		if counter, ok := i.(interface{ Count() int64 }); ok {
			desc := prometheus.NewDesc(metricName, "terminos RPC metric", nil, nil)
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(counter.Count()))
		}
		if timer, ok := i.(interface{ Mean() float64 }); ok {
			desc := prometheus.NewDesc(metricName+"_mean_ns", "terminos RPC mean elapsed nanoseconds", nil, nil)
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, timer.Mean())
		}
	})
}

func sanitizeMetricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}
