package event

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

// jsonRecord mirrors the openFDA device-event result shape. Nested device
// and patient arrays may be missing or short; all access defaults to empty.
type jsonRecord struct {
	ReportNumber   string `json:"report_number"`
	DateReceived   string `json:"date_received"`
	ManufacturerG1 string `json:"manufacturer_g1_name"`
	Device         []struct {
		BrandName string `json:"brand_name"`
	} `json:"device"`
	ProductProblems []string `json:"product_problems"`
	Patient         []struct {
		PatientProblems []string `json:"patient_problems"`
	} `json:"patient"`
}

func (jsonLoader) Load(path string, policy DatePolicy) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	var raw []jsonRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		// openFDA responses wrap records in a results envelope.
		var envelope struct {
			Results []jsonRecord `json:"results"`
		}
		if err2 := json.Unmarshal(data, &envelope); err2 != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		raw = envelope.Results
	}

	res := &LoadResult{}
	for i, jr := range raw {
		date, err := ParseDate(jr.DateReceived)
		if err != nil {
			if policy == DateSkip {
				res.Rejected++
				continue
			}
			return nil, fmt.Errorf("record %d (report %s): %w", i+1, jr.ReportNumber, err)
		}
		rec := Record{
			ReportID:        jr.ReportNumber,
			DateReceived:    date,
			Manufacturer:    jr.ManufacturerG1,
			ProductProblems: jr.ProductProblems,
		}
		if len(jr.Device) > 0 {
			rec.Brand = jr.Device[0].BrandName
		}
		if len(jr.Patient) > 0 {
			rec.PatientProblems = jr.Patient[0].PatientProblems
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}
