package mysql

const propertyCols = `id, owner_id, owner_user_id, address, suburb, city, region, property_type,
  bedrooms, bathrooms, estimated_value, features, is_active, created_at`

const wantedAdCols = `id, buyer_id, buyer_user_id, buyer_name, budget, property_types,
  bedrooms_min, bedrooms_max, features, is_active`

const matchCols = `id, property_id, wanted_ad_id, match_score, match_type, matched_on,
  viewed_by_owner, created_at, updated_at`

const upsertPropertySQL = `
INSERT INTO properties
  (id, owner_id, owner_user_id, address, suburb, city, region, property_type,
   bedrooms, bathrooms, estimated_value, features, is_active)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  owner_id        = VALUES(owner_id),
  owner_user_id   = VALUES(owner_user_id),
  address         = VALUES(address),
  suburb          = VALUES(suburb),
  city            = VALUES(city),
  region          = VALUES(region),
  property_type   = VALUES(property_type),
  bedrooms        = VALUES(bedrooms),
  bathrooms       = VALUES(bathrooms),
  estimated_value = VALUES(estimated_value),
  features        = VALUES(features),
  is_active       = VALUES(is_active)
`

const upsertWantedAdSQL = `
INSERT INTO wanted_ads
  (id, buyer_id, buyer_user_id, buyer_name, budget, property_types,
   bedrooms_min, bedrooms_max, features, is_active)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  buyer_id       = VALUES(buyer_id),
  buyer_user_id  = VALUES(buyer_user_id),
  buyer_name     = VALUES(buyer_name),
  budget         = VALUES(budget),
  property_types = VALUES(property_types),
  bedrooms_min   = VALUES(bedrooms_min),
  bedrooms_max   = VALUES(bedrooms_max),
  features       = VALUES(features),
  is_active      = VALUES(is_active)
`

const (
	deleteTargetAddressesSQL = `DELETE FROM target_addresses WHERE wanted_ad_id = ?`
	deleteTargetLocationsSQL = `DELETE FROM target_locations WHERE wanted_ad_id = ?`
	insertTargetAddressSQL   = `INSERT INTO target_addresses (wanted_ad_id, position, address, suburb, city) VALUES (?, ?, ?, ?, ?)`
	insertTargetLocationSQL  = `INSERT INTO target_locations (wanted_ad_id, location_type, name) VALUES (?, ?, ?)`
)

// Plain INSERT on purpose: a duplicate (wanted_ad_id, property_id) must
// surface as error 1062 so the caller can fall back to an update.
const insertMatchSQL = `
INSERT INTO matches
  (id, property_id, wanted_ad_id, match_score, match_type, matched_on)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const updateMatchSQL = `
UPDATE matches
SET match_score = ?,
    match_type  = ?,
    matched_on  = ?
WHERE property_id = ? AND wanted_ad_id = ?
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const (
	getPropertySQL          = `SELECT ` + propertyCols + ` FROM properties WHERE id = ?`
	listActivePropertiesSQL = `SELECT ` + propertyCols + ` FROM properties WHERE is_active = TRUE ORDER BY id`
	listPropertyIDsSQL      = `SELECT id FROM properties ORDER BY id`

	getWantedAdSQL         = `SELECT ` + wantedAdCols + ` FROM wanted_ads WHERE id = ?`
	listActiveWantedAdsSQL = `SELECT ` + wantedAdCols + ` FROM wanted_ads WHERE is_active = TRUE ORDER BY id`

	// target addresses keep their stored order; it decides classification
	listTargetAddressesSQL = `
SELECT wanted_ad_id, address, suburb, city
FROM target_addresses
WHERE wanted_ad_id IN (?)
ORDER BY wanted_ad_id, position, id`

	listTargetLocationsSQL = `
SELECT wanted_ad_id, location_type, name
FROM target_locations
WHERE wanted_ad_id IN (?)
ORDER BY wanted_ad_id, id`

	getMatchSQL       = `SELECT ` + matchCols + ` FROM matches WHERE property_id = ? AND wanted_ad_id = ?`
	countMatchesSQL   = `SELECT COUNT(*) FROM matches WHERE property_id = ? AND match_type = ?`
	listByPropertySQL = `SELECT ` + matchCols + ` FROM matches WHERE property_id = ? ORDER BY match_score DESC, created_at, id`
	listByWantedAdSQL = `SELECT ` + matchCols + ` FROM matches WHERE wanted_ad_id = ? ORDER BY match_score DESC, created_at, id`
)
