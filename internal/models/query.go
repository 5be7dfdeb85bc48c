package models

// QueryStatus of a member query in the inbox.
type QueryStatus string

const (
	QueryStatusOpen     QueryStatus = "open"
	QueryStatusResolved QueryStatus = "resolved"
)

// Query is one member question sent to the leadership inbox. Non-admin
// viewers only ever see queries matching their own senderEmail, in live and
// archive mode alike.
type Query struct {
	ID          string      `json:"id"`
	SenderName  string      `json:"senderName"`
	SenderEmail string      `json:"senderEmail"`
	Subject     string      `json:"subject"`
	Message     string      `json:"message"`
	Answer      string      `json:"answer,omitempty"`
	AnsweredBy  string      `json:"answeredBy,omitempty"`
	Status      QueryStatus `json:"status"`
	Timestamp   When        `json:"timestamp"`
}
