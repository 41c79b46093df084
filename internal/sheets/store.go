package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// lockDescription prefixes the protected ranges this store creates.
const lockDescription = "lessons-ledger row lock"

// Store implements service.TabularStore, service.Painter and service.Protector on one spreadsheet.
type Store struct {
	service  *sheets.Service
	logger   *slog.Logger
	sheetIDs map[string]int64
	config   Config
	mu       sync.Mutex
}

// NewStore authenticates and returns a store for config.SpreadsheetID.
func NewStore(ctx context.Context, config Config, logger *slog.Logger) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return NewStoreWithService(srv, config, logger), nil
}

// NewStoreWithService wraps an existing API client.
func NewStoreWithService(srv *sheets.Service, config Config, logger *slog.Logger) *Store {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Store{
		service: srv,
		logger:  common.OrDefault(logger),
		config:  config,
	}
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

func (s *Store) retryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  s.config.RetryAttempts + 1,
		InitialDelay: s.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// do runs one API call with retries. Client errors other than 429 are not retried.
func (s *Store) do(ctx context.Context, op string, call func() error) error {
	err := common.WithRetry(ctx, func() error {
		return classify(call())
	}, s.retryOptions())
	if err != nil {
		return fmt.Errorf("sheets %s: %w", op, err)
	}
	return nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", common.ErrRateLimit, err)
		case apiErr.Code >= 400 && apiErr.Code < 500:
			return common.Permanent(err)
		}
	}
	return err
}

// sheetID resolves a sheet title, refreshing the cache once on a miss.
func (s *Store) sheetID(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	id, ok := s.sheetIDs[name]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	if err := s.refreshSheetIDs(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.sheetIDs[name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("sheet %q: %w", name, common.ErrSheetNotFound)
}

func (s *Store) refreshSheetIDs(ctx context.Context) error {
	var doc *sheets.Spreadsheet
	err := s.do(ctx, "get spreadsheet", func() error {
		var err error
		doc, err = s.service.Spreadsheets.Get(s.config.SpreadsheetID).
			Fields("sheets.properties").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return err
	}

	ids := make(map[string]int64, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			ids[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	s.mu.Lock()
	s.sheetIDs = ids
	s.mu.Unlock()
	return nil
}

func (s *Store) batchUpdate(ctx context.Context, op string, requests []*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	var resp *sheets.BatchUpdateSpreadsheetResponse
	err := s.do(ctx, op, func() error {
		var err error
		resp, err = s.service.Spreadsheets.BatchUpdate(s.config.SpreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		return err
	})
	return resp, err
}

// EnsureSheet implements service.TabularStore.
func (s *Store) EnsureSheet(ctx context.Context, name string, header []string) error {
	if _, err := s.sheetID(ctx, name); err != nil {
		if !errors.Is(err, common.ErrSheetNotFound) {
			return err
		}
		resp, err := s.batchUpdate(ctx, "add sheet", []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		}})
		if err != nil {
			return err
		}
		if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil {
			s.mu.Lock()
			if s.sheetIDs == nil {
				s.sheetIDs = make(map[string]int64)
			}
			s.sheetIDs[name] = resp.Replies[0].AddSheet.Properties.SheetId
			s.mu.Unlock()
		}
		s.logger.Info("created sheet", "sheet", name)
	}

	var current *sheets.ValueRange
	err := s.do(ctx, "read header", func() error {
		var err error
		current, err = s.service.Spreadsheets.Values.Get(s.config.SpreadsheetID, a1(name, "1:1")).Context(ctx).Do()
		return err
	})
	if err != nil {
		return err
	}
	if len(current.Values) > 0 && !blankRow(current.Values[0]) {
		return nil
	}

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	return s.update(ctx, a1(name, "A1"), [][]any{row})
}

// ReadAll implements service.TabularStore. Numbers and dates come back unformatted;
// dates are day serials.
func (s *Store) ReadAll(ctx context.Context, name string) ([][]any, error) {
	if _, err := s.sheetID(ctx, name); err != nil {
		return nil, err
	}

	var resp *sheets.ValueRange
	err := s.do(ctx, "read", func() error {
		var err error
		resp, err = s.service.Spreadsheets.Values.Get(s.config.SpreadsheetID, quote(name)).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("SERIAL_NUMBER").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("read sheet", "sheet", name, "rows", len(resp.Values))
	return resp.Values, nil
}

// Append implements service.TabularStore.
func (s *Store) Append(ctx context.Context, name string, rows [][]any) (int, error) {
	first := 0
	for i := 0; i < len(rows); i += s.config.BatchSize {
		end := min(i+s.config.BatchSize, len(rows))

		var resp *sheets.AppendValuesResponse
		err := s.do(ctx, "append", func() error {
			var err error
			resp, err = s.service.Spreadsheets.Values.Append(s.config.SpreadsheetID, a1(name, "A1"), &sheets.ValueRange{
				Values: rows[i:end],
			}).
				ValueInputOption("USER_ENTERED").
				InsertDataOption("INSERT_ROWS").
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return 0, fmt.Errorf("failed to append batch starting at %d: %w", i, err)
		}

		if i == 0 && resp.Updates != nil {
			row, err := firstRow(resp.Updates.UpdatedRange)
			if err != nil {
				return 0, err
			}
			first = row
		}
		s.logger.Debug("appended batch", "sheet", name, "rows", end-i)
	}
	return first, nil
}

// UpdateRows implements service.TabularStore.
func (s *Store) UpdateRows(ctx context.Context, name string, updates []service.RowUpdate) error {
	for i := 0; i < len(updates); i += s.config.BatchSize {
		end := min(i+s.config.BatchSize, len(updates))

		data := make([]*sheets.ValueRange, 0, end-i)
		for _, u := range updates[i:end] {
			data = append(data, &sheets.ValueRange{
				Range:  a1(name, "A"+strconv.Itoa(u.Row)),
				Values: [][]any{u.Values},
			})
		}

		err := s.do(ctx, "update rows", func() error {
			_, err := s.service.Spreadsheets.Values.BatchUpdate(s.config.SpreadsheetID, &sheets.BatchUpdateValuesRequest{
				ValueInputOption: "USER_ENTERED",
				Data:             data,
			}).Context(ctx).Do()
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteColumn implements service.TabularStore.
func (s *Store) WriteColumn(ctx context.Context, name string, col, startRow int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	letter := ColumnName(col)
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{v}
	}
	rng := fmt.Sprintf("%s%d:%s%d", letter, startRow, letter, startRow+len(values)-1)
	return s.update(ctx, a1(name, rng), rows)
}

// UpdateCell implements service.TabularStore.
func (s *Store) UpdateCell(ctx context.Context, name string, row, col int, value any) error {
	return s.update(ctx, a1(name, ColumnName(col)+strconv.Itoa(row)), [][]any{{value}})
}

func (s *Store) update(ctx context.Context, rng string, values [][]any) error {
	return s.do(ctx, "update", func() error {
		_, err := s.service.Spreadsheets.Values.Update(s.config.SpreadsheetID, rng, &sheets.ValueRange{Values: values}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		return err
	})
}

// DeleteRows implements service.TabularStore. Rows are removed bottom-up so earlier
// deletions do not shift the later ones.
func (s *Store) DeleteRows(ctx context.Context, name string, rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	id, err := s.sheetID(ctx, name)
	if err != nil {
		return err
	}

	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	requests := make([]*sheets.Request, 0, len(sorted))
	last := 0
	for _, r := range sorted {
		if r == last || r < 2 {
			continue
		}
		last = r
		requests = append(requests, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    id,
					Dimension:  "ROWS",
					StartIndex: int64(r - 1),
					EndIndex:   int64(r),
				},
			},
		})
	}
	if len(requests) == 0 {
		return nil
	}
	_, err = s.batchUpdate(ctx, "delete rows", requests)
	return err
}
