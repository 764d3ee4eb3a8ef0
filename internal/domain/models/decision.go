package models

import "time"

// HorizonView is one time-horizon slice of a decision report.
type HorizonView struct {
	Horizon string `json:"horizon"`
	View    string `json:"view"`
	Action  string `json:"action"`
}

// TimeHorizons groups the short, medium and long term views.
type TimeHorizons struct {
	ShortTerm  HorizonView `json:"shortTerm"`
	MediumTerm HorizonView `json:"mediumTerm"`
	LongTerm   HorizonView `json:"longTerm"`
}

// DecisionReport is the synthesized dashboard summary. It is recomputed from
// the latest two snapshots on each request and never persisted.
type DecisionReport struct {
	Regime           string       `json:"regime"`
	Winners          []string     `json:"winners"`
	Losers           []string     `json:"losers"`
	OpportunityZones []string     `json:"opportunityZones"`
	TimeHorizons     TimeHorizons `json:"timeHorizons"`
	WhatBreaks       []string     `json:"whatBreaks"`
	Sentiment        string       `json:"sentiment"`
	Signals          []string     `json:"signals"`
	WhatChanged      []string     `json:"whatChanged"`
	GeneratedAt      time.Time    `json:"generated_at"`
}
