package shell

// ZshPlugin makes zsh write each command to $HISTFILE as soon as it is
// entered, with timestamps, which is what `please build` reads.
const ZshPlugin = `# please shell plugin, auto-generated, do not edit manually
# Source this file from your ~/.zshrc:
#   source ~/.config/please/please.plugin.zsh

setopt INC_APPEND_HISTORY
setopt EXTENDED_HISTORY
: ${HISTFILE:=$HOME/.zsh_history}
(( SAVEHIST < 10000 )) && SAVEHIST=10000
(( HISTSIZE < SAVEHIST )) && HISTSIZE=$SAVEHIST
`
