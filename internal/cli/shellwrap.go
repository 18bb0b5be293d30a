package cli

import "fmt"

// shellWrapper returns the `wt` shell function for shell (spec §4.8:
// "the wrapper creates a temp file, exports its path as
// WORKTRUNK_DIRECTIVE_FILE, invokes the binary, then sources the
// file"). bash and zsh share POSIX-ish syntax; fish needs its own.
func shellWrapper(shell string) (string, error) {
	switch shell {
	case "bash", "zsh", "sh", "":
		return posixWrapper, nil
	case "fish":
		return fishWrapper, nil
	default:
		return "", fmt.Errorf("unsupported shell %q (want bash, zsh, or fish)", shell)
	}
}

const posixWrapper = `wt() {
  local wt_directive_file
  wt_directive_file="$(mktemp)"
  WORKTRUNK_DIRECTIVE_FILE="$wt_directive_file" command wt "$@"
  local wt_status=$?
  if [ -s "$wt_directive_file" ]; then
    . "$wt_directive_file"
  fi
  rm -f "$wt_directive_file"
  return $wt_status
}`

const fishWrapper = `function wt
  set -l wt_directive_file (mktemp)
  env WORKTRUNK_DIRECTIVE_FILE=$wt_directive_file command wt $argv
  set -l wt_status $status
  if test -s $wt_directive_file
    source $wt_directive_file
  end
  rm -f $wt_directive_file
  return $wt_status
end`
