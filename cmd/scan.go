package cmd

import (
	"fmt"
	"time"

	"github.com/thoherr/vacuum-docker-registry/registry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
)

const prometheusNamespace = "vacuum_docker_registry"

var (
	scanPushgatewayURL string

	completionTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: prometheusNamespace,
		Name:      "last_completion_timestamp_seconds",
		Help:      "The timestamp of the last completion of a size scan, successful or not.",
	})
	duration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: prometheusNamespace,
		Name:      "duration_seconds",
		Help:      "The duration of the last size scan in seconds.",
	})
	failCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: prometheusNamespace,
		Name:      "last_scan_failed_tags",
		Help:      "The number of tags that could not be read during the last scan.",
	})
)

var sizeCmd = &cobra.Command{
	Use:   "size <repository>",
	Short: "Report the deduplicated layer size of one repository",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		report, err := mustRegistry().RepositorySize(args[0])
		if err != nil {
			fatal(err)
		}

		printReports(report)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report the deduplicated layer size of every repository",
	Run: func(cmd *cobra.Command, args []string) {
		start := time.Now()
		reports, err := mustRegistry().AllSizes()
		if err != nil {
			fatal(err)
		}

		printReports(reports...)
		duration.Set(time.Since(start).Seconds())
		completionTime.SetToCurrentTime()
		for _, report := range reports {
			for _, tag := range report.Tags {
				if tag.Err != nil {
					failCount.Inc()
				}
			}
		}

		if scanPushgatewayURL != "" {
			reg := prometheus.NewRegistry()
			reg.MustRegister(completionTime, duration, failCount)
			err = push.New(scanPushgatewayURL, "vacuum_docker_registry_scan").Gatherer(reg).Add()
			if err != nil {
				fatal(err)
			}
		}
	},
}

func printReports(reports ...*registry.SizeReport) {
	for _, report := range reports {
		for _, line := range report.Lines() {
			fmt.Println(line)
		}
	}
}

func init() {
	scanCmd.Flags().StringVar(&scanPushgatewayURL, "metrics.pushgateway", "", "push scan metrics to this Prometheus Pushgateway")
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(scanCmd)
}
