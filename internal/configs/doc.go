// Package configs loads and saves the slink configuration file.
//
// The configuration is a single TOML file, by default at
//
//	$XDG_CONFIG_HOME/slink/slink.conf
//
// overridable with the --config flag or the SLINK_CONFIG environment
// variable. It holds the hash secret, so Load refuses a file that group or
// others can read and Save always writes mode 0600 inside a 0700 directory.
//
// # Fields
//
//	base_url    URL prefix under which base_dir is served
//	base_dir    web server document root holding entries and links
//	db_path     share ledger location
//	hash_secret key material for link tokens
//	web_user    service account the web server runs as
//	web_group   service group
//	hash_bytes  bytes of hash kept in a link token (2-32)
//	dir_mode    final mode of entry directories, e.g. "0750"
//	file_mode   final mode of stored files, e.g. "0640"
//
// There is no global configuration: the CLI loads a *Config once and passes
// it down.
package configs
