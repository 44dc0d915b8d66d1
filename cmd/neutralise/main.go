// neutralise analyzes one workflow's neutralization assay plates: it reads
// the instrument exports, computes per-sample IC50 values with QC checks,
// and writes results, model parameters, failures, and normalised data as
// CSV files, with optional curve plots and database upload.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/hts-serology/plaqueassay"
	"github.com/hts-serology/plaqueassay/ingest"
	"github.com/hts-serology/plaqueassay/limsdb"
	"github.com/hts-serology/plaqueassay/plot"
)

func main() {
	start := time.Now()
	log.Println("neutralise start")
	defer func() {
		log.Printf("neutralise end. Took %.2f seconds\n", time.Since(start).Seconds())
	}()

	var dataDir, outputDir, dbPath, ladderName string
	var plotCurves bool

	flag.StringVar(&dataDir, "dir", "", "Workflow directory containing the per-plate instrument export directories")
	flag.StringVar(&outputDir, "output", ".", "Directory in which to write the output csv files")
	flag.StringVar(&dbPath, "db", "", "(Optional) Path to the LIMS results database; when set, results are uploaded after the csv files are written")
	flag.StringVar(&ladderName, "ladder", "fourfold", "Dilution ladder used by this assay generation: fourfold (1:40-1:2560) or tenfold (1:40-1:40000)")
	flag.BoolVar(&plotCurves, "plot", false, "(Optional) Render a png dilution curve per sample into the output directory")
	flag.Parse()

	if dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	var ladder plaqueassay.DilutionLadder
	switch ladderName {
	case "fourfold":
		ladder = plaqueassay.FourfoldLadder
	case "tenfold":
		ladder = plaqueassay.TenfoldLadder
	default:
		log.Fatalf("unknown ladder %q", ladderName)
	}

	records, err := ingest.ReadWorkflow(dataDir, ladder)
	if err != nil {
		log.Fatalln(err)
	}

	experiment, err := plaqueassay.NewExperiment(records, ladder, plaqueassay.DefaultCriteria())
	if err != nil {
		log.Fatalln(err)
	}

	if err := saveCSV(filepath.Join(outputDir, fmt.Sprintf("results_%s.csv", experiment.Name)), experiment.ResultRows()); err != nil {
		log.Fatalln(err)
	}
	if err := saveCSV(filepath.Join(outputDir, fmt.Sprintf("failures_%s.csv", experiment.Name)), experiment.FailureRows()); err != nil {
		log.Fatalln(err)
	}
	if err := saveCSV(filepath.Join(outputDir, fmt.Sprintf("parameters_%s.csv", experiment.Name)), experiment.ParameterRows()); err != nil {
		log.Fatalln(err)
	}
	if err := saveCSV(filepath.Join(outputDir, fmt.Sprintf("normalised_%s.csv", experiment.Name)), experiment.NormalisedRows()); err != nil {
		log.Fatalln(err)
	}

	if plotCurves {
		if err := renderPlots(experiment, outputDir); err != nil {
			log.Fatalln(err)
		}
	}

	if dbPath != "" {
		db, err := limsdb.Open(dbPath)
		if err != nil {
			log.Fatalln(err)
		}
		defer db.Close()
		uploader := limsdb.Uploader{DB: db}
		if err := uploader.Upload(experiment.Name, experiment); err != nil {
			log.Fatalln(err)
		}
	}
}

func saveCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gocsv.Marshal(rows, f); err != nil {
		return err
	}
	log.Printf("saved %s", path)
	return nil
}

func renderPlots(e *plaqueassay.Experiment, outputDir string) error {
	plotDir := filepath.Join(outputDir, fmt.Sprintf("plots_%s", e.Name))
	if err := os.MkdirAll(plotDir, 0o755); err != nil {
		return err
	}
	for name, sample := range e.Samples {
		f, err := os.Create(filepath.Join(plotDir, name+".png"))
		if err != nil {
			return err
		}
		if err := plot.SampleCurve(sample, e.Ladder, f); err != nil {
			f.Close()
			return err
		}
		f.Close()
	}
	log.Printf("saved plots to %s", plotDir)
	return nil
}
