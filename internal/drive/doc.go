// Package drive lists, searches and downloads DOCX files from Google Drive.
//
// Authentication uses an OAuth client credentials file. The first run
// starts a loopback authorization flow and stores the resulting token
// with 0600 permissions; later runs reuse and refresh it.
package drive
