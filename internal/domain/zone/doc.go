// Package zone contains the domain types of the spatial zone catalog:
// the zone classification, 3D points and axis-aligned bounding boxes.
package zone
