// Package domain models Zillow Home Value Index (ZHVI) state data and the
// batch transform that turns it into annual year-over-year observations.
//
// # Data Source
//
// Zillow publishes ZHVI exports at https://www.zillow.com/research/data/. The
// state-level file has one row per region and one column per month:
//
//	RegionID,SizeRank,RegionName,RegionType,StateName,2000-01-31,2000-02-29,...
//	9,0,California,state,CA,186466.0,187161.0,...
//
// The identifying columns (RegionID, SizeRank, RegionType, StateName) are
// dropped on load. RegionName carries the full state name. Month headers are
// month-end dates; early months may be blank for some regions.
//
// # Annual values
//
// The December observation stands in for a year's value, so every region has
// at most one value per calendar year. Year-over-year change is computed
// against the previous retained row of the same region:
//
//	YoY[t] = (ZHVI[t] - ZHVI[t-1]) / ZHVI[t-1] * 100
//
// A region's first retained year has no predecessor and is dropped, as is any
// row whose own or previous value is missing. A rise from zero is an infinite
// change and is kept; it takes the top colour of the clamped scale.
//
// # Postal codes
//
// Region names are mapped to two-letter codes through a closed table of the 50
// states. Other regions (District of Columbia, territories) keep an empty code:
// they stay in the table but cannot be drawn on a map keyed by code.
package domain
