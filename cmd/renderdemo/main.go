package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-studio/resume/export"
	"resume-studio/resume/model"
)

func main() {
	outDir := flag.String("out", "./out", "output directory")
	withPDF := flag.Bool("pdf", false, "also print PDFs through headless Chrome")
	chromePath := flag.String("chrome", "", "Chrome executable (defaults to PATH lookup)")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	doc := sampleResume()
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode sample: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outDir, "sample_resume.json"), payload, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write sample: %v\n", err)
		os.Exit(1)
	}

	exporter := export.New(*chromePath, 60*time.Second)
	formats := []export.Format{export.FormatHTML, export.FormatText}
	if *withPDF {
		formats = append(formats, export.FormatPDF)
	}

	ctx := context.Background()
	for _, id := range model.TemplateIDs {
		doc.TemplateID = id
		for _, format := range formats {
			art, err := exporter.Export(ctx, doc, format)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s/%s: %v\n", id, format, err)
				os.Exit(1)
			}
			path := filepath.Join(*outDir, fmt.Sprintf("%s.%s", id, format))
			if err := os.WriteFile(path, art.Body, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
				os.Exit(1)
			}
			fmt.Printf("OK: wrote %s\n", path)
		}
	}
}

func sampleResume() model.ResumeDocument {
	doc := model.New("Jordan Lee - Backend")
	doc.PersonalInfo = model.PersonalInfo{
		FullName: "Jordan Lee",
		Email:    "jordan.lee@example.com",
		Phone:    "+1-555-0102",
		LinkedIn: "https://www.linkedin.com/in/jordanlee",
		Website:  "https://github.com/jordanlee",
		Summary:  "Backend engineer with 8+ years of experience building resilient APIs and data services.",
	}
	doc.Experience = []model.Experience{
		{
			ID:          "exp_1",
			Company:     "Acme Logistics",
			Position:    "Senior Backend Engineer",
			StartDate:   "2021-04",
			EndDate:     "",
			Description: "Designed a routing service that reduced shipment latency by 18%.\nImplemented distributed tracing to cut incident triage time by 35%.",
		},
		{
			ID:          "exp_2",
			Company:     "Blue Harbor Systems",
			Position:    "Backend Engineer",
			StartDate:   "2018-01",
			EndDate:     "2021-03",
			Description: "Built event-driven ingestion pipelines for compliance data feeds.",
		},
	}
	doc.Education = []model.Education{
		{ID: "edu_1", School: "University of Texas", Degree: "BSc", Major: "Computer Science", StartDate: "2012-09", EndDate: "2016-06"},
	}
	doc.Projects = []model.Project{
		{ID: "prj_1", Name: "routekit", Role: "Maintainer", Description: "Open-source route planning library.", Link: "https://github.com/jordanlee/routekit"},
	}
	doc.Skills = "Go, Java, PostgreSQL, Redis, AWS, Kubernetes"
	return doc
}
