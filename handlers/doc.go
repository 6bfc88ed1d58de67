/*
Package handlers defines the commands the eLog bot understands and routes
them to the logbook.

Grammar summary

A command is the text of a Slack message after the mention of the bot.
Tokens are separated by whitespace and keywords are matched ignoring case.

    command = fetch | list | help | post

    fetch = /get entry_id
    list  = /listcat | /listtags | /listmap
    help  = /help

    post = text [ /cat category ] [ /tag tag ] [ text ... ]

Grammar description

entry_id - a decimal entry number. Anything else is answered with an error
and no request is made to the logbook.

category - the logbook category of the post. It may be a shorthand listed by
/listmap, shorthands are expanded to the canonical category. When the post is
made in a channel that is mapped to a category, the mapping wins and /cat is
posted as part of the text.

tag - a tag known to the logbook. Besides /tag, tags may be referenced inside
the text as #tag, or as the channel link Slack turns #tag into when a channel
with the same name exists. Unknown tags are ignored and every tag is applied
once.

text - everything else. The /cat and /tag directives are removed from the
posted text; #tag references are kept.


Example

    @elog /get 42
    @elog Pump restarted #vacuum /cat sensor/ts1
    @elog /listtags

*/
package handlers
