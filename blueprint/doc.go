/*
Package blueprint describes the static shape of widget trees.

A blueprint is an already parsed template fragment: an element with bound attributes,
a loop over a collection, a chain of conditional branches, a component instance, or
a slot inside a component's template. Blueprints are immutable and shared by all the
widgets created from them.

Blueprints may be read from YAML documents:

    - for: val
      in: $list
      body:
        - element: text
          value: $val

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package blueprint
