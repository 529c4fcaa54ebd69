package main

// Compiled-in modules. Each package registers itself in init().
import (
	_ "github.com/flemzord/tgupload/internal/gateway"
	_ "github.com/flemzord/tgupload/modules/channel/telegram"
	_ "github.com/flemzord/tgupload/modules/journal/sqlite"
)
