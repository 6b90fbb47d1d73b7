package csfaclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/csfa-report/internal/domain"
)

const timesheetPath = "/timesheet-list"

type TimesheetParams struct {
	StartDate time.Time
	EndDate   time.Time
	Draw      int
	Start     int
	Length    int
}

// DateRange é o filtro "2006-01-02 - 2006-01-02" esperado pela tela de timesheet
func (p TimesheetParams) DateRange() string {
	return fmt.Sprintf("%s - %s", p.StartDate.Format(time.DateOnly), p.EndDate.Format(time.DateOnly))
}

func timesheetQuery(params TimesheetParams) url.Values {
	query := url.Values{}
	for _, empty := range []string{
		"group_by", "survey_id", "rep_id", "customer_id", "product_category", "product_name",
		"reportparameter", "sales_rep_id", "relationship", "status", "maincategoryselect",
		"search_timesheet", "search[value]",
	} {
		query.Set(empty, "")
	}

	query.Set("distributorid", "0")
	query.Set("stageid", "1")
	query.Set("inventorytype", "virtual")
	query.Set("mtd", "1")
	query.Set("daterange", params.DateRange())
	query.Set("groupdate", "all")
	query.Set("timesheet_updated", "false")
	query.Set("draw", strconv.Itoa(params.Draw))
	query.Set("columns[0][data]", "timesheet_id")
	query.Set("columns[0][name]", "timesheet_id")
	query.Set("columns[0][searchable]", "true")
	query.Set("columns[0][orderable]", "true")
	query.Set("order[0][column]", "0")
	query.Set("order[0][dir]", "desc")
	query.Set("start", strconv.Itoa(params.Start))
	query.Set("length", strconv.Itoa(params.Length))
	query.Set("search[regex]", "false")
	return query
}

func (c *CSFAClient) GetTimesheet(ctx context.Context, params TimesheetParams) (TimesheetResponse, error) {
	var response TimesheetResponse

	rawURL, err := c.endpoint(timesheetPath, timesheetQuery(params))
	if err != nil {
		return response, err
	}

	req, err := c.sessionRequest(ctx, rawURL)
	if err != nil {
		return response, err
	}

	if err := c.do(req, &response); err != nil {
		return response, err
	}

	if response.Data == nil {
		return response, domain.NewFetchError(domain.ErrMalformedResponse, "", 0,
			errors.New("campo data ausente na resposta do timesheet"))
	}

	return response, nil
}
