package main

import (
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/config"
	"github.com/harchamaq/informes/internal/export"
	"github.com/harchamaq/informes/internal/logger"
	"github.com/harchamaq/informes/internal/report"
)

func main() {
	log := logger.Must(logger.New()).Named("api")
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("loading configuration", zap.Error(err))
	}

	rep, err := loadReport(cfg.Files.OutputJSON)
	if err != nil {
		log.Fatal("loading report, run the informe command first", zap.Error(err))
	}

	dashboard, err := export.NewHTMLExporter(log)
	if err != nil {
		log.Fatal("building dashboard renderer", zap.Error(err))
	}

	app := &application{
		cfg:       cfg,
		logger:    log,
		report:    rep,
		dashboard: dashboard,
	}

	mux := app.mount()

	if err := app.run(mux); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func loadReport(path string) (*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
