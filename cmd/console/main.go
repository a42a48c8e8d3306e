// Command console is a scripted walkthrough of the practice admin
// controllers: it drives the billing form and the booking table against a
// clinic backend (or an embedded mock one with --demo) and renders the
// resulting tables as text.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/wolfman30/practice-admin-console/internal/billing"
	"github.com/wolfman30/practice-admin-console/internal/booking"
	"github.com/wolfman30/practice-admin-console/internal/clinicapi"
	"github.com/wolfman30/practice-admin-console/internal/config"
	"github.com/wolfman30/practice-admin-console/internal/demo"
	"github.com/wolfman30/practice-admin-console/internal/observability/metrics"
	"github.com/wolfman30/practice-admin-console/internal/practice"
	"github.com/wolfman30/practice-admin-console/internal/ui"
	"github.com/wolfman30/practice-admin-console/pkg/logging"
)

func main() {
	useDemo := flag.Bool("demo", false, "run against an embedded mock clinic backend")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using environment variables")
	}
	cfg := config.Load()
	logger := logging.NewText(cfg.LogLevel)

	baseURL := cfg.APIBaseURL
	if *useDemo {
		backend := demo.NewServer(
			demo.WithLatency(cfg.MockLatency),
			demo.WithLogger(logger),
		)
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			logger.Error("failed to start embedded backend", "error", err)
			os.Exit(1)
		}
		defer ln.Close()
		go func() {
			_ = http.Serve(ln, backend.Routes())
		}()
		baseURL = "http://" + ln.Addr().String()
		logger.Info("embedded mock backend listening", "addr", baseURL)
	}

	registry := prometheus.NewRegistry()
	apiMetrics := metrics.NewAPIMetrics(registry)

	client, err := clinicapi.New(baseURL,
		clinicapi.WithLogger(logger),
		clinicapi.WithMetrics(apiMetrics),
		clinicapi.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
	)
	if err != nil {
		logger.Error("failed to create clinic client", "error", err)
		os.Exit(1)
	}

	page := practice.Context{
		BookingID:   12,
		PatientID:   3,
		TherapistID: 9,
		Profession:  "physiotherapy",
		Therapists: []practice.Therapist{
			{ID: 9, Name: "N. Adams"},
			{ID: 11, Name: "B. Zulu"},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	runBillingWalkthrough(ctx, client, logger, page)
	runBookingWalkthrough(ctx, client, logger, cfg.Locale, page)
	printMetricsSummary(registry)
}

func runBillingWalkthrough(ctx context.Context, client *clinicapi.Client, logger *logging.Logger, page practice.Context) {
	fmt.Println("== Billing session form ==")

	form := billing.NewController(client, billing.WithLogger(logger))
	form.Open()

	row := form.Rows()[0]
	row.CodeInput = "A1 - Initial consultation"
	row.QuantityInput = "2"
	form.PopulateRow(ctx, page, row)
	form.LoadModifiers(ctx, page, row)
	fmt.Println(form.Table().RenderText())

	if row.Modifier.Choose("HALF") {
		form.ApplyModifier(row)
		row.QuantityInput = "3"
		form.RecalcTotal(row)
		fmt.Println("-- after HALF modifier, quantity 3 --")
		fmt.Println(form.Table().RenderText())
	}

	second := form.AddRow(ctx, page)
	second.CodeInput = "B2"
	form.PopulateRow(ctx, page, second)

	if err := form.Submit(ctx, page); err != nil {
		logger.Error("billing submit failed", "error", err)
	}

	restored := billing.NewController(client, billing.WithLogger(logger))
	restored.LoadExisting(ctx, page, page.BookingID)
	fmt.Println("-- restored session --")
	fmt.Println(restored.Table().RenderText())
}

func runBookingWalkthrough(ctx context.Context, client *clinicapi.Client, logger *logging.Logger, locale string, page practice.Context) {
	fmt.Println("== Bookings ==")

	ctrl := booking.NewController(client,
		booking.WithLogger(logger),
		booking.WithCollator(ui.NewCollator(locale)),
		booking.WithOnSaved(func() { logger.Info("bookings view refreshed") }),
	)

	ctrl.Table().SetRows([][]string{
		{"Charlie Brown", "2026-09-03", "14:00", "B. Zulu"},
		{"alice jones", "2026-09-01", "09:00", "N. Adams"},
		{"Bob Smith", "2026-09-02", "11:30", "N. Adams"},
	})
	ctrl.SortTable(0)
	fmt.Println("-- sorted by name --")
	fmt.Println(ctrl.Table().RenderText())

	ctrl.OpenBookingsModal(ctx, 1)
	fmt.Println("-- patient 1 bookings --")
	fmt.Println(ctrl.ListTable().RenderText())

	ctrl.OpenBookingModal(page, nil)
	form := ctrl.Form()
	form.Name = "Dana White"
	form.Date = time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	form.Time = "10:30"
	if err := ctrl.SubmitBookingForm(ctx); err != nil {
		logger.Error("booking submit failed", "error", err)
	}
}

// printMetricsSummary gathers the run's counters and prints them, one
// series per line.
func printMetricsSummary(g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		fmt.Fprintln(os.Stderr, "metrics gather failed:", err)
		return
	}

	fmt.Println("== API call summary ==")
	for _, fam := range families {
		if fam.GetType() != dto.MetricType_COUNTER {
			continue
		}
		lines := make([]string, 0, len(fam.GetMetric()))
		for _, m := range fam.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				if labels != "" {
					labels += ","
				}
				labels += lp.GetName() + "=" + lp.GetValue()
			}
			lines = append(lines, fmt.Sprintf("  %s{%s} %.0f", fam.GetName(), labels, m.GetCounter().GetValue()))
		}
		sort.Strings(lines)
		for _, line := range lines {
			fmt.Println(line)
		}
	}
}
