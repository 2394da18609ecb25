package console

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/karesti/infinispan-console-ng/consoleapi"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	// SearchResult is the success payload of [SearchService.Search].
	SearchResult struct {
		// Total number of matching entries, which may exceed len(Values).
		Total int64 `json:"total" yaml:"total"`
		// Hits of the requested page rendered as indented JSON.
		Values []string `json:"values" yaml:"values"`
	}

	// SearchStats is the success payload of [SearchService.RetrieveStats]. Counters are formatted for display.
	SearchStats struct {
		Query      []QueryStat `json:"query" yaml:"query"`
		Index      []IndexStat `json:"index" yaml:"index"`
		Reindexing bool        `json:"reindexing" yaml:"reindexing"`
	}

	// QueryStat holds the formatted counters of one query kind.
	QueryStat struct {
		Name    string `json:"name" yaml:"name"`
		Count   string `json:"count" yaml:"count"`
		Max     string `json:"max" yaml:"max"`
		Average string `json:"average" yaml:"average"`
		Slowest string `json:"slowest" yaml:"slowest"`
	}

	// IndexStat holds the formatted counters of one indexed entity.
	IndexStat struct {
		Name  string `json:"name" yaml:"name"`
		Count string `json:"count" yaml:"count"`
		Size  string `json:"size" yaml:"size"`
	}

	// QueryStats is the success payload of [SearchService.RetrieveQueryStats].
	QueryStats struct {
		SearchQueryExecutionCount              float64 `json:"search_query_execution_count" yaml:"search_query_execution_count"`
		SearchQueryTotalTime                   float64 `json:"search_query_total_time" yaml:"search_query_total_time"`
		SearchQueryExecutionMaxTime            float64 `json:"search_query_execution_max_time" yaml:"search_query_execution_max_time"`
		SearchQueryExecutionAvgTime            float64 `json:"search_query_execution_avg_time" yaml:"search_query_execution_avg_time"`
		ObjectLoadingTotalTime                 float64 `json:"object_loading_total_time" yaml:"object_loading_total_time"`
		ObjectLoadingExecutionMaxTime          float64 `json:"object_loading_execution_max_time" yaml:"object_loading_execution_max_time"`
		ObjectLoadingExecutionAvgTime          float64 `json:"object_loading_execution_avg_time" yaml:"object_loading_execution_avg_time"`
		ObjectsLoadedCount                     float64 `json:"objects_loaded_count" yaml:"objects_loaded_count"`
		SearchQueryExecutionMaxTimeQueryString string  `json:"search_query_execution_max_time_query_string" yaml:"search_query_execution_max_time_query_string"`
	}

	// IndexMetamodel describes how one entity is indexed.
	IndexMetamodel struct {
		EntityName string       `json:"entity_name" yaml:"entity_name"`
		JavaClass  string       `json:"java_class" yaml:"java_class"`
		IndexName  string       `json:"index_name" yaml:"index_name"`
		Fields     []IndexField `json:"fields" yaml:"fields"`
	}

	// IndexField describes one indexed value field.
	IndexField struct {
		Name        string `json:"name" yaml:"name"`
		Type        string `json:"type" yaml:"type"`
		MultiValued bool   `json:"multi_valued" yaml:"multi_valued"`
		Searchable  bool   `json:"searchable" yaml:"searchable"`
		Sortable    bool   `json:"sortable" yaml:"sortable"`
		Projectable bool   `json:"projectable" yaml:"projectable"`
		Aggregable  bool   `json:"aggregable" yaml:"aggregable"`
		Analyzer    string `json:"analyzer,omitempty" yaml:"analyzer,omitempty"`
		Normalizer  string `json:"normalizer,omitempty" yaml:"normalizer,omitempty"`
	}
)

var (
	errMissingStats = errors.New("missing query or index statistics")
	errMissingHits  = errors.New("missing search hits")
)

func searchResultFromBody(body []byte) (SearchResult, error) {
	var response consoleapi.SearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return SearchResult{}, err
	}
	if response.Hits == nil {
		return SearchResult{}, errMissingHits
	}
	values := make([]string, 0, len(response.Hits))
	for _, hit := range response.Hits {
		if len(hit.Hit) == 0 {
			values = append(values, "null")
			continue
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, hit.Hit, "", "  "); err != nil {
			return SearchResult{}, err
		}
		values = append(values, buf.String())
	}
	return SearchResult{Total: response.TotalResults, Values: values}, nil
}

func searchStatsFromBody(body []byte) (SearchStats, error) {
	var response consoleapi.SearchStatsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return SearchStats{}, err
	}
	if response.Query == nil || response.Index.Types == nil {
		return SearchStats{}, errMissingStats
	}

	queryNames := maps.Keys(response.Query)
	slices.Sort(queryNames)
	queryStats := make([]QueryStat, 0, len(queryNames))
	for _, name := range queryNames {
		stat := response.Query[name]
		queryStats = append(queryStats, QueryStat{
			Name:    name,
			Count:   FormatNumber(stat.Count),
			Max:     FormatNumber(stat.Max),
			Average: FormatNumber(stat.Average),
			Slowest: stat.Slowest,
		})
	}

	typeNames := maps.Keys(response.Index.Types)
	slices.Sort(typeNames)
	indexStats := make([]IndexStat, 0, len(typeNames))
	for _, name := range typeNames {
		stat := response.Index.Types[name]
		indexStats = append(indexStats, IndexStat{
			Name:  name,
			Count: FormatNumber(stat.Count),
			Size:  FormatNumber(stat.Size),
		})
	}

	return SearchStats{
		Query:      queryStats,
		Index:      indexStats,
		Reindexing: response.Reindexing || response.Index.Reindexing,
	}, nil
}

func queryStatsFromBody(body []byte) (QueryStats, error) {
	var response consoleapi.QueryStatsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return QueryStats{}, err
	}
	return QueryStats(response), nil
}

func indexMetamodelFromBody(body []byte) ([]IndexMetamodel, error) {
	var response []consoleapi.IndexMetamodelResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	metamodels := make([]IndexMetamodel, 0, len(response))
	for _, entity := range response {
		fieldNames := maps.Keys(entity.ValueFields)
		slices.Sort(fieldNames)
		fields := make([]IndexField, 0, len(fieldNames))
		for _, name := range fieldNames {
			field := entity.ValueFields[name]
			fields = append(fields, IndexField{
				Name:        name,
				Type:        field.Type,
				MultiValued: field.MultiValued,
				Searchable:  field.Searchable,
				Sortable:    field.Sortable,
				Projectable: field.Projectable,
				Aggregable:  field.Aggregable,
				Analyzer:    field.Analyzer,
				Normalizer:  field.Normalizer,
			})
		}
		metamodels = append(metamodels, IndexMetamodel{
			EntityName: entity.EntityName,
			JavaClass:  entity.JavaClass,
			IndexName:  entity.IndexName,
			Fields:     fields,
		})
	}
	return metamodels, nil
}
