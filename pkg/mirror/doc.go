/*
Package mirror moves tracked files between the home directory and the backup
directory.

Prepare clears the backup directory (everything except git's metadata
directory) and copies every tracked directory, then every tracked file, from
the home directory into it. Restore copies them back the other way, and never
clears anything in the home directory. Reconcile rebuilds the tracked lists
from the top-level entries of the backup directory.

None of these operations are atomic. If the process is killed while Prepare is
running, the backup directory is left partially cleared or partially copied,
and there is no rollback. Running Prepare again repairs it.

A tracked path that doesn't exist on the source side is logged and skipped so
that one missing path doesn't block the rest of the backup.
*/
package mirror
