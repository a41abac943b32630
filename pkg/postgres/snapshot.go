package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/lead-allocator/pkg/db"
)

// Member property names used by the CRM
const (
	ExtensionProperty = "分機號碼"
	LevelProperty     = "名單分級"
)

// GetManagers returns members of the app that have an extension number
func (d *DB) GetManagers(ctx context.Context, appID string) ([]db.Manager, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT DISTINCT member.id::text, member.name, COALESCE(member.email, '')
		FROM member
		JOIN member_property ON member.id = member_property.member_id AND member.app_id = $1
		JOIN property ON member_property.property_id = property.id AND property.name = $2
		ORDER BY member.id::text
	`, appID, ExtensionProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to query managers: %w", err)
	}
	defer rows.Close()

	var managers []db.Manager
	for rows.Next() {
		var m db.Manager
		if err := rows.Scan(&m.ID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan manager: %w", err)
		}
		managers = append(managers, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating managers: %w", err)
	}

	return managers, nil
}

// GetCategories returns the member categories of the app
func (d *DB) GetCategories(ctx context.Context, appID string) ([]db.Category, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id::text, name
		FROM category
		WHERE app_id = $1 AND class = 'member'
		ORDER BY id::text
	`, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []db.Category
	for rows.Next() {
		var c db.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetLeads returns members created between start and the end of the end day.
// A member appears if it has a category, a level, or both.
func (d *DB) GetLeads(ctx context.Context, appID string, start, end time.Time) ([]db.Lead, error) {
	endExclusive := end.AddDate(0, 0, 1)

	rows, err := d.pool.Query(ctx, `
		WITH lead_category AS (
			SELECT DISTINCT ON (member.id) member.id::text AS member_id, member_category.category_id::text AS category_id
			FROM member
			JOIN member_category ON member.id = member_category.member_id AND member.app_id = $1
			WHERE member.created_at >= $2 AND member.created_at < $3
			ORDER BY member.id, member.created_at DESC, member_category.category_id
		),
		lead_level AS (
			SELECT DISTINCT ON (member.id) member.id::text AS member_id, member_property.value AS level
			FROM member
			JOIN member_property ON member.id = member_property.member_id AND member.app_id = $1
			JOIN property ON member_property.property_id = property.id AND property.name = $4
			WHERE member.created_at >= $2 AND member.created_at < $3
			ORDER BY member.id, member_property.value
		)
		SELECT COALESCE(lc.member_id, ll.member_id), lc.category_id, COALESCE(ll.level, '')
		FROM lead_category lc
		FULL OUTER JOIN lead_level ll ON lc.member_id = ll.member_id
		ORDER BY 1
	`, appID, start, endExclusive, LevelProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []db.Lead
	for rows.Next() {
		var l db.Lead
		if err := rows.Scan(&l.MemberID, &l.CategoryID, &l.Level); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leads: %w", err)
	}

	return leads, nil
}
