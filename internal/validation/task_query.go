package validation

import (
	"net/url"
	"strconv"
	"unicode/utf8"

	"taskmanager/internal/models"
)

// ParseTaskQuery validates list parameters. Any failure rejects the whole
// request; the returned query is only meaningful when err is nil.
//
// Empty filter and paging parameters are treated as absent. sortOrder is
// permissive: only "desc" sorts descending, anything else (an empty value
// included) sorts ascending.
func ParseTaskQuery(values url.Values) (models.TaskQuery, error) {
	q := models.DefaultTaskQuery()
	var errs Errors

	if v, ok := single(values, "status", &errs, "Invalid status"); ok {
		if validate.Var(v, statusRule) == nil {
			st := models.TaskStatus(v)
			q.Status = &st
		} else {
			errs.Add("status", "Invalid status")
		}
	}
	if v, ok := single(values, "priority", &errs, "Invalid priority"); ok {
		if validate.Var(v, priorityRule) == nil {
			p := models.TaskPriority(v)
			q.Priority = &p
		} else {
			errs.Add("priority", "Invalid priority")
		}
	}
	if v, ok := single(values, "search", &errs, "Search must be a string"); ok {
		if utf8.ValidString(v) {
			q.Search = v
		} else {
			errs.Add("search", "Search must be a string")
		}
	}
	if v, ok := single(values, "page", &errs, "Page must be a positive integer"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs.Add("page", "Page must be a positive integer")
		} else {
			q.Page = n
		}
	}
	if v, ok := single(values, "limit", &errs, "Limit must be between 1 and 100"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > models.MaxLimit {
			errs.Add("limit", "Limit must be between 1 and 100")
		} else {
			q.Limit = n
		}
	}
	if v, ok := single(values, "sortBy", &errs, "Invalid sort field"); ok {
		if validate.Var(v, sortByRule) == nil {
			q.SortBy = models.TaskSortField(v)
		} else {
			errs.Add("sortBy", "Invalid sort field")
		}
	}
	if v, ok := values["sortOrder"]; ok && len(v) > 0 {
		q.Descending = v[0] == "desc"
	}

	if err := errs.Err(); err != nil {
		return models.TaskQuery{}, err
	}
	return q, nil
}

// single returns the only non-empty value of key. A repeated key is a
// type error (an array where a scalar was expected).
func single(values url.Values, key string, errs *Errors, msg string) (string, bool) {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	if len(vs) > 1 {
		errs.Add(key, msg)
		return "", false
	}
	if vs[0] == "" {
		return "", false
	}
	return vs[0], true
}
