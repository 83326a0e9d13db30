package measure

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pipeline"

// Registry returns a prometheus registry holding a snapshot of every metric of msr.
func Registry(msr Measure) (*prometheus.Registry, error) {
	avgDuration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "step_avg_duration_seconds",
		Help:      "Average time spent computing one output of a step.",
	}, []string{"step"})
	totalDuration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "step_total_duration_seconds",
		Help:      "Time elapsed between the start of the pipeline and the end of a step.",
	}, []string{"step"})
	outputs := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "step_outputs",
		Help:      "Number of elements processed by a step.",
	}, []string{"step"})
	transport := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "step_transport_avg_duration_seconds",
		Help:      "Average time a step waited for an element from its parent.",
	}, []string{"step", "parent"})

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{avgDuration, totalDuration, outputs, transport} {
		err := reg.Register(c)
		if err != nil {
			return nil, errors.Wrap(err, "unable to register collector")
		}
	}

	for name, mt := range msr.AllMetrics() {
		avgDuration.WithLabelValues(name).Set(mt.AVGDuration().Seconds())
		totalDuration.WithLabelValues(name).Set(mt.GetTotalDuration().Seconds())
		outputs.WithLabelValues(name).Set(float64(mt.Count()))
		for parent, info := range mt.AVGTransportDuration() {
			transport.WithLabelValues(name, parent).Set(info.Elapsed.Seconds())
		}
	}

	return reg, nil
}

// WriteTextfile writes msr in the prometheus text format, for the node exporter textfile collector.
func WriteTextfile(msr Measure, filename string) error {
	reg, err := Registry(msr)
	if err != nil {
		return err
	}

	err = prometheus.WriteToTextfile(filename, reg)
	if err != nil {
		return errors.Wrapf(err, "unable to write metrics to %s", filename)
	}

	return nil
}
