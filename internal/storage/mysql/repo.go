package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"propmatch/internal/domain"
)

const errDupEntry = 1062

func isDuplicate(err error) bool {
	var me *gomysql.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrStr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func ptrInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	i := int(n.Int64)
	return &i
}

func ptrInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	i := n.Int64
	return &i
}

type Repo struct{ db *sqlx.DB }

func New(db *sql.DB) *Repo { return &Repo{db: sqlx.NewDb(db, "mysql")} }

// ---- rows ----

type propertyRow struct {
	ID             string         `db:"id"`
	OwnerID        string         `db:"owner_id"`
	OwnerUserID    string         `db:"owner_user_id"`
	Address        string         `db:"address"`
	Suburb         sql.NullString `db:"suburb"`
	City           sql.NullString `db:"city"`
	Region         sql.NullString `db:"region"`
	PropertyType   string         `db:"property_type"`
	Bedrooms       sql.NullInt64  `db:"bedrooms"`
	Bathrooms      sql.NullInt64  `db:"bathrooms"`
	EstimatedValue sql.NullInt64  `db:"estimated_value"`
	Features       sql.NullString `db:"features"`
	IsActive       bool           `db:"is_active"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (r propertyRow) toDomain() domain.Property {
	return domain.Property{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		OwnerUserID:    r.OwnerUserID,
		Address:        r.Address,
		Suburb:         ptrStr(r.Suburb),
		City:           ptrStr(r.City),
		Region:         ptrStr(r.Region),
		PropertyType:   r.PropertyType,
		Bedrooms:       ptrInt(r.Bedrooms),
		Bathrooms:      ptrInt(r.Bathrooms),
		EstimatedValue: ptrInt64(r.EstimatedValue),
		Features:       ptrStr(r.Features),
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
	}
}

type wantedAdRow struct {
	ID            string         `db:"id"`
	BuyerID       string         `db:"buyer_id"`
	BuyerUserID   string         `db:"buyer_user_id"`
	BuyerName     sql.NullString `db:"buyer_name"`
	Budget        int64          `db:"budget"`
	PropertyTypes sql.NullString `db:"property_types"`
	BedroomsMin   sql.NullInt64  `db:"bedrooms_min"`
	BedroomsMax   sql.NullInt64  `db:"bedrooms_max"`
	Features      sql.NullString `db:"features"`
	IsActive      bool           `db:"is_active"`
}

func (r wantedAdRow) toDomain() domain.WantedAd {
	return domain.WantedAd{
		ID:            r.ID,
		BuyerID:       r.BuyerID,
		BuyerUserID:   r.BuyerUserID,
		BuyerName:     ptrStr(r.BuyerName),
		Budget:        r.Budget,
		PropertyTypes: ptrStr(r.PropertyTypes),
		BedroomsMin:   ptrInt(r.BedroomsMin),
		BedroomsMax:   ptrInt(r.BedroomsMax),
		Features:      ptrStr(r.Features),
		IsActive:      r.IsActive,
	}
}

type targetAddressRow struct {
	WantedAdID string         `db:"wanted_ad_id"`
	Address    string         `db:"address"`
	Suburb     sql.NullString `db:"suburb"`
	City       sql.NullString `db:"city"`
}

type targetLocationRow struct {
	WantedAdID   string `db:"wanted_ad_id"`
	LocationType string `db:"location_type"`
	Name         string `db:"name"`
}

type matchRow struct {
	ID            string    `db:"id"`
	PropertyID    string    `db:"property_id"`
	WantedAdID    string    `db:"wanted_ad_id"`
	MatchScore    int       `db:"match_score"`
	MatchType     string    `db:"match_type"`
	MatchedOn     []byte    `db:"matched_on"`
	ViewedByOwner bool      `db:"viewed_by_owner"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r matchRow) toDomain() domain.Match {
	m := domain.Match{
		ID:            r.ID,
		PropertyID:    r.PropertyID,
		WantedAdID:    r.WantedAdID,
		MatchScore:    r.MatchScore,
		MatchType:     domain.MatchType(r.MatchType),
		ViewedByOwner: r.ViewedByOwner,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	_ = json.Unmarshal(r.MatchedOn, &m.MatchedOn)
	return m
}

func matchedOnJSON(on []string) string {
	if on == nil {
		on = []string{}
	}
	b, _ := json.Marshal(on)
	return string(b)
}

// ---- properties ----

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) error {
	_, err := r.db.ExecContext(ctx, upsertPropertySQL,
		p.ID,
		p.OwnerID,
		p.OwnerUserID,
		p.Address,
		valStr(p.Suburb),
		valStr(p.City),
		valStr(p.Region),
		p.PropertyType,
		valInt(p.Bedrooms),
		valInt(p.Bathrooms),
		valInt64(p.EstimatedValue),
		valStr(p.Features),
		p.IsActive,
	)
	return err
}

func (r *Repo) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	var row propertyRow
	if err := r.db.GetContext(ctx, &row, getPropertySQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Property{}, domain.ErrNotFound
		}
		return domain.Property{}, err
	}
	return row.toDomain(), nil
}

func (r *Repo) ListActiveProperties(ctx context.Context) ([]domain.Property, error) {
	var rows []propertyRow
	if err := r.db.SelectContext(ctx, &rows, listActivePropertiesSQL); err != nil {
		return nil, err
	}
	out := make([]domain.Property, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *Repo) ListPropertyIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, listPropertyIDsSQL); err != nil {
		return nil, err
	}
	return ids, nil
}

// ---- wanted ads ----

// UpsertWantedAd writes the ad and replaces its targets in one transaction.
func (r *Repo) UpsertWantedAd(ctx context.Context, ad domain.WantedAd) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, upsertWantedAdSQL,
		ad.ID,
		ad.BuyerID,
		ad.BuyerUserID,
		valStr(ad.BuyerName),
		ad.Budget,
		valStr(ad.PropertyTypes),
		valInt(ad.BedroomsMin),
		valInt(ad.BedroomsMax),
		valStr(ad.Features),
		ad.IsActive,
	); err != nil {
		return fmt.Errorf("upsert wanted ad: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteTargetAddressesSQL, ad.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, deleteTargetLocationsSQL, ad.ID); err != nil {
		return err
	}
	for i, a := range ad.TargetAddresses {
		if _, err := tx.ExecContext(ctx, insertTargetAddressSQL, ad.ID, i, a.Address, valStr(a.Suburb), valStr(a.City)); err != nil {
			return fmt.Errorf("insert target address: %w", err)
		}
	}
	for _, l := range ad.TargetLocations {
		if _, err := tx.ExecContext(ctx, insertTargetLocationSQL, ad.ID, string(l.LocationType), l.Name); err != nil {
			return fmt.Errorf("insert target location: %w", err)
		}
	}
	return tx.Commit()
}

func (r *Repo) GetWantedAd(ctx context.Context, id string) (domain.WantedAd, error) {
	var row wantedAdRow
	if err := r.db.GetContext(ctx, &row, getWantedAdSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WantedAd{}, domain.ErrNotFound
		}
		return domain.WantedAd{}, err
	}
	ads := []domain.WantedAd{row.toDomain()}
	if err := r.loadTargets(ctx, ads); err != nil {
		return domain.WantedAd{}, err
	}
	return ads[0], nil
}

func (r *Repo) ListActiveWantedAds(ctx context.Context) ([]domain.WantedAd, error) {
	var rows []wantedAdRow
	if err := r.db.SelectContext(ctx, &rows, listActiveWantedAdsSQL); err != nil {
		return nil, err
	}
	ads := make([]domain.WantedAd, 0, len(rows))
	for _, row := range rows {
		ads = append(ads, row.toDomain())
	}
	if err := r.loadTargets(ctx, ads); err != nil {
		return nil, err
	}
	return ads, nil
}

// loadTargets fills target addresses and locations for ads in two queries.
func (r *Repo) loadTargets(ctx context.Context, ads []domain.WantedAd) error {
	if len(ads) == 0 {
		return nil
	}
	ids := make([]string, 0, len(ads))
	idx := make(map[string]int, len(ads))
	for i, ad := range ads {
		ids = append(ids, ad.ID)
		idx[ad.ID] = i
	}

	q, args, err := sqlx.In(listTargetAddressesSQL, ids)
	if err != nil {
		return err
	}
	var addrs []targetAddressRow
	if err := r.db.SelectContext(ctx, &addrs, r.db.Rebind(q), args...); err != nil {
		return fmt.Errorf("load target addresses: %w", err)
	}
	for _, a := range addrs {
		i := idx[a.WantedAdID]
		ads[i].TargetAddresses = append(ads[i].TargetAddresses, domain.TargetAddress{
			Address: a.Address,
			Suburb:  ptrStr(a.Suburb),
			City:    ptrStr(a.City),
		})
	}

	q, args, err = sqlx.In(listTargetLocationsSQL, ids)
	if err != nil {
		return err
	}
	var locs []targetLocationRow
	if err := r.db.SelectContext(ctx, &locs, r.db.Rebind(q), args...); err != nil {
		return fmt.Errorf("load target locations: %w", err)
	}
	for _, l := range locs {
		i := idx[l.WantedAdID]
		ads[i].TargetLocations = append(ads[i].TargetLocations, domain.TargetLocation{
			LocationType: domain.LocationType(l.LocationType),
			Name:         l.Name,
		})
	}
	return nil
}

// ---- matches ----

func (r *Repo) CreateMatch(ctx context.Context, m domain.Match) (domain.Match, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, insertMatchSQL,
		m.ID,
		m.PropertyID,
		m.WantedAdID,
		m.MatchScore,
		string(m.MatchType),
		matchedOnJSON(m.MatchedOn),
	)
	if err != nil {
		if isDuplicate(err) {
			return domain.Match{}, fmt.Errorf("match %s/%s: %w", m.PropertyID, m.WantedAdID, domain.ErrConflict)
		}
		return domain.Match{}, err
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	return m, nil
}

func (r *Repo) UpdateMatch(ctx context.Context, m domain.Match) error {
	_, err := r.db.ExecContext(ctx, updateMatchSQL,
		m.MatchScore,
		string(m.MatchType),
		matchedOnJSON(m.MatchedOn),
		m.PropertyID,
		m.WantedAdID,
	)
	return err
}

func (r *Repo) GetMatch(ctx context.Context, propertyID, wantedAdID string) (domain.Match, error) {
	var row matchRow
	if err := r.db.GetContext(ctx, &row, getMatchSQL, propertyID, wantedAdID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Match{}, domain.ErrNotFound
		}
		return domain.Match{}, err
	}
	return row.toDomain(), nil
}

func (r *Repo) CountMatches(ctx context.Context, propertyID string, t domain.MatchType) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, countMatchesSQL, propertyID, string(t)); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) ListMatchesByProperty(ctx context.Context, propertyID string) ([]domain.Match, error) {
	return r.listMatches(ctx, listByPropertySQL, propertyID)
}

func (r *Repo) ListMatchesByWantedAd(ctx context.Context, wantedAdID string) ([]domain.Match, error) {
	return r.listMatches(ctx, listByWantedAdSQL, wantedAdID)
}

func (r *Repo) listMatches(ctx context.Context, q string, arg string) ([]domain.Match, error) {
	var rows []matchRow
	if err := r.db.SelectContext(ctx, &rows, q, arg); err != nil {
		return nil, err
	}
	out := make([]domain.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
