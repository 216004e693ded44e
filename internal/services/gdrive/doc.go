// Package gdrive stores name lists as documents in Google Drive.
//
// Documents are located by name, read through files.export (Google Docs) or
// a media download (plain files), and overwritten with a media upload. The
// document must already exist. Authentication uses a refresh-token OAuth2
// flow; the access token is refreshed once when Drive answers 401.
package gdrive
