package constant

// AsciiArtLogo is the application's ASCII art banner.
const AsciiArtLogo = `                     ____
   ____ ___  ___  ____/ / /__  __  __
  / __ '__ \/ _ \/ __  / / _ \/ / / /
 / / / / / /  __/ /_/ / /  __/ /_/ /
/_/ /_/ /_/\___/\__,_/_/\___/\__, /
                            /____/`
