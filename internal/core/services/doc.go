// Package services holds the core of sitesearch: the search controller that
// resumes and merges sessions, and the settings service.
//
// Services depend only on the ports in internal/core/ports. They never
// import adapters.
package services
