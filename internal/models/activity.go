package models

type LogFilter struct {
	Fields    map[string]string `json:"fields"`
	Timestamp string            `json:"timestamp"`
}

type Activity struct {
	Message string
	Object  any
	Filter  LogFilter
}
