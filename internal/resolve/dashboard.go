package resolve

import (
	"strings"

	"github.com/giftology/radar/internal/xmltree"
	"github.com/giftology/radar/pkg/schema"
)

var dovMarkers = []string{"HarmlessStarter", "Greenlight", "TotalDOV"}

// findDOVFields searches the nested Task wrappers for the first object that
// carries DOV counters. The backend has been seen to bury them three or four
// levels deep under repeated Task/TaskName elements.
func findDOVFields(n any, depth int) map[string]any {
	if depth > MaxSearchDepth {
		return nil
	}
	if list, ok := n.([]any); ok {
		for _, el := range list {
			if found := findDOVFields(el, depth+1); found != nil {
				return found
			}
		}
		return nil
	}
	m := xmltree.AsMap(n)
	if m == nil {
		return nil
	}
	if xmltree.Has(m, dovMarkers...) {
		return m
	}
	for _, k := range xmltree.Keys(m) {
		if found := findDOVFields(m[k], depth+1); found != nil {
			return found
		}
	}
	return nil
}

// dovBuckets sums DOV entries of the form {Name, Count} into the categories
// that have no dedicated counter field.
type dovBuckets struct {
	handwrittenNotes, gifting, videos, other float64
}

func (b *dovBuckets) add(node any) {
	for _, d := range xmltree.List(node) {
		name := strings.ToLower(strings.TrimSpace(text(d, "Name")))
		if name == "" {
			continue
		}
		count := number(d, "Count")
		switch {
		case strings.Contains(name, "handwritten"), strings.Contains(name, "note"):
			b.handwrittenNotes += count
		case strings.Contains(name, "gift"):
			b.gifting += count
		case strings.Contains(name, "video"):
			b.videos += count
		case strings.Contains(name, "other"):
			b.other += count
		}
	}
}

// Dashboard resolves a GetDashboard payload.
func Dashboard(tree map[string]any) schema.DashboardMetrics {
	sel := xmltree.SelectionsOf(tree)
	dov := findDOVFields(sel["Task"], 0)
	if dov == nil {
		dov = map[string]any{}
	}

	var buckets dovBuckets
	buckets.add(sel["DOV"])
	buckets.add(dov["DOV"])

	// counter prefers the Selections-level field and falls back to the nested
	// DOV object.
	counter := func(keys ...string) float64 {
		if v := xmltree.First(sel, keys...); v != nil {
			return xmltree.Number(v)
		}
		return number(dov, keys...)
	}
	orBucket := func(v, bucket float64) float64 {
		if v != 0 {
			return v
		}
		return bucket
	}

	return schema.DashboardMetrics{
		ReferralPartners:     mapList(sel["BestPartner"], toPartner),
		RunawayRelationships: mapList(sel["Current"], toRelationship),
		RecentPartners:       mapList(sel["Recent"], toRelationship),
		Tasks:                mapList(sel["Task"], toDashboardTask),
		DOVCounts: schema.DOVCounts{
			HarmlessStarters:    counter("HarmlessStarter"),
			GreenlightQuestions: counter("Greenlight"),
			ClarityConvos:       counter("ClarityConvos"),
			HandwrittenNotes:    orBucket(counter("HandwrittenNotes"), buckets.handwrittenNotes),
			Gifting:             orBucket(counter("Gifting"), buckets.gifting),
			Videos:              orBucket(counter("Videos"), buckets.videos),
			Other:               orBucket(counter("Other"), buckets.other),
			Total:               counter("TotalDOV", "TotalDov"),
		},
		Outcomes: schema.Outcomes{
			Introductions:    counter("Introduction"),
			Referrals:        counter("Referral"),
			ReferralPartners: counter("Partner"),
		},
		Revenue: counter("ReferralRevenue", "ReferralRevenueGenerated", "referralRevenue"),
	}
}

func toPartner(n any) schema.Partner {
	return schema.Partner{
		Name:          text(n, "Name"),
		ContactSerial: text(n, "ContactSerial"),
		Amount:        text(n, "Amount"),
	}
}

func toRelationship(n any) schema.Relationship {
	return schema.Relationship{
		Name:          text(n, "Name"),
		ContactSerial: text(n, "ContactSerial"),
		Phone:         text(n, "Phone"),
	}
}

func toDashboardTask(n any) schema.DashboardTask {
	return schema.DashboardTask{
		Name:          text(n, "Name", "TaskName"),
		TaskSerial:    text(n, "TaskSerial"),
		ContactSerial: text(n, "ContactSerial"),
		TaskName:      text(n, "TaskName"),
		Date:          text(n, "Date"),
	}
}
