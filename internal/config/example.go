package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasklist configuration file
# Values can be overridden by TASKLIST_* environment variables or CLI flags

# Go time layout used to display deadlines
date_layout = "02.01.2006, 15:04:05"

# Log directory for interactive sessions (supports ~ expansion)
log_dir = "~/.tasklist/logs"

# Logging: debug, info, warn, error; text, json, logfmt
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false

[storage]
# Backend: file, sqlite, redis or memory
backend = "file"

# Key the task list is stored under
key = "lab-b-todo-tasks"

# Data directory for the file and sqlite backends
dir = "~/.tasklist"

# sqlite_path = "~/.tasklist/tasklist.db"

# redis_url = "redis://:password@localhost:6379/0"
# redis_addr = "localhost:6379"
# redis_password = ""
# redis_db = 0

# Per-operation timeout in seconds (0 disables)
timeout_seconds = 5
`
}
