// Package consoleapi holds the wire types of the Infinispan REST endpoints used by the console.
package consoleapi

import "encoding/json"

type (
	// ErrorResponse is the structured body returned with non successful responses.
	ErrorResponse struct {
		Error *ErrorDetail `json:"error"`
	}

	// ErrorDetail describes a server side failure.
	ErrorDetail struct {
		// A simple text message.
		Message string `json:"message"`
		// The underlying cause, often an exception message.
		Cause string `json:"cause"`
	}

	// SearchResponse is the body of a successful query.
	SearchResponse struct {
		TotalResults int64       `json:"total_results"`
		Hits         []SearchHit `json:"hits"`
	}

	// SearchHit is a single query hit. The hit is kept raw so it can be rendered as is.
	SearchHit struct {
		Hit json.RawMessage `json:"hit"`
	}

	// SearchStatsResponse is the body of the search statistics endpoint.
	SearchStatsResponse struct {
		Query map[string]QueryStatResponse `json:"query"`
		Index IndexStatsResponse           `json:"index"`
		// Some server versions report reindexing at the top level.
		Reindexing bool `json:"reindexing"`
	}

	// QueryStatResponse holds the counters of one query kind (indexed_local, hybrid, ...).
	QueryStatResponse struct {
		Count   float64 `json:"count"`
		Max     float64 `json:"max"`
		Average float64 `json:"average"`
		Slowest string  `json:"slowest"`
	}

	// IndexStatsResponse holds per entity index counters.
	IndexStatsResponse struct {
		Types      map[string]IndexTypeResponse `json:"types"`
		Reindexing bool                         `json:"reindexing"`
	}

	// IndexTypeResponse holds the counters of one indexed entity.
	IndexTypeResponse struct {
		Count float64 `json:"count"`
		Size  float64 `json:"size"`
	}

	// QueryStatsResponse is the body of the legacy query statistics endpoint.
	QueryStatsResponse struct {
		SearchQueryExecutionCount              float64 `json:"search_query_execution_count"`
		SearchQueryTotalTime                   float64 `json:"search_query_total_time"`
		SearchQueryExecutionMaxTime            float64 `json:"search_query_execution_max_time"`
		SearchQueryExecutionAvgTime            float64 `json:"search_query_execution_avg_time"`
		ObjectLoadingTotalTime                 float64 `json:"object_loading_total_time"`
		ObjectLoadingExecutionMaxTime          float64 `json:"object_loading_execution_max_time"`
		ObjectLoadingExecutionAvgTime          float64 `json:"object_loading_execution_avg_time"`
		ObjectsLoadedCount                     float64 `json:"objects_loaded_count"`
		SearchQueryExecutionMaxTimeQueryString string  `json:"search_query_execution_max_time_query_string"`
	}

	// IndexMetamodelResponse describes how one entity is indexed.
	IndexMetamodelResponse struct {
		EntityName  string                        `json:"entity-name"`
		JavaClass   string                        `json:"java-class"`
		IndexName   string                        `json:"index-name"`
		ValueFields map[string]ValueFieldResponse `json:"value-fields"`
	}

	// ValueFieldResponse describes one indexed value field.
	ValueFieldResponse struct {
		MultiValued bool   `json:"multi-valued"`
		Type        string `json:"type"`
		Searchable  bool   `json:"searchable"`
		Sortable    bool   `json:"sortable"`
		Projectable bool   `json:"projectable"`
		Aggregable  bool   `json:"aggregable"`
		Analyzer    string `json:"analyzer,omitempty"`
		Normalizer  string `json:"normalizer,omitempty"`
	}
)
