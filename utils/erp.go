package utils

import (
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/yourusername/contractor-po/config"
)

// JobDetails is the prefill metadata the ERP holds for a booked job.
type JobDetails struct {
	ClientName string  `db:"ClientName" json:"clientName"`
	JobTitle   string  `db:"JobTitle" json:"jobTitle"`
	Qty        float64 `db:"OrderQty" json:"qty"`
	ProductCat string  `db:"ProductCategory" json:"productCat"`
	UnitPrice  float64 `db:"UnitPrice" json:"unitPrice"`
}

type ERPClientInterface interface {
	SearchJobNumbers(jobNumberPart string) ([]string, error)
	GetJobDetails(jobNumber string) (*JobDetails, error)
}

type connAttempt struct {
	done chan struct{}
	db   *sqlx.DB
	err  error
}

// ERPClient talks to the external ERP database through its two stored
// procedures. The connection is established lazily and shared; at most one
// dial is in flight at a time and concurrent callers wait on its outcome.
// A failed query drops the handle so the next call redials.
type ERPClient struct {
	dsn string

	mu      sync.Mutex
	db      *sqlx.DB
	attempt *connAttempt
}

func NewERPClient(dsn string) *ERPClient {
	return &ERPClient{dsn: dsn}
}

func (c *ERPClient) conn() (*sqlx.DB, error) {
	c.mu.Lock()
	if c.db != nil {
		db := c.db
		c.mu.Unlock()
		return db, nil
	}
	if c.attempt != nil {
		a := c.attempt
		c.mu.Unlock()
		<-a.done
		return a.db, a.err
	}
	a := &connAttempt{done: make(chan struct{})}
	c.attempt = a
	c.mu.Unlock()

	start := time.Now()
	db, err := sqlx.Connect("mysql", c.dsn)
	if err == nil {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(30 * time.Second)
		config.GetLogger().WithField("elapsed", time.Since(start).String()).Info("connected to ERP database")
	}
	a.db, a.err = db, err

	c.mu.Lock()
	if err == nil {
		c.db = db
	}
	c.attempt = nil
	c.mu.Unlock()
	close(a.done)

	if err != nil {
		return nil, fmt.Errorf("erp connection failed: %w", err)
	}
	return db, nil
}

// invalidate drops the shared handle after an error so it is re-established
// on the next call.
func (c *ERPClient) invalidate() {
	c.mu.Lock()
	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
	c.mu.Unlock()
}

// SearchJobNumbers resolves a partial job-number string to candidate full
// job numbers via the ERP's search procedure.
func (c *ERPClient) SearchJobNumbers(jobNumberPart string) ([]string, error) {
	db, err := c.conn()
	if err != nil {
		return nil, err
	}

	var jobNumbers []string
	if err := db.Select(&jobNumbers, "CALL contractor_search_jobnumbers(?)", jobNumberPart); err != nil {
		c.invalidate()
		return nil, fmt.Errorf("erp job number search failed: %w", err)
	}
	return jobNumbers, nil
}

// GetJobDetails resolves a full job number to its booking metadata.
// Returns (nil, nil) when the ERP has no row for that number.
func (c *ERPClient) GetJobDetails(jobNumber string) (*JobDetails, error) {
	db, err := c.conn()
	if err != nil {
		return nil, err
	}

	var details []JobDetails
	if err := db.Select(&details, "CALL contractor_get_job_details(?)", jobNumber); err != nil {
		c.invalidate()
		return nil, fmt.Errorf("erp job details lookup failed: %w", err)
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}
